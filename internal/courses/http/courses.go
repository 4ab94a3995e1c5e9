package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/courses/internal/courses/service"
)

type CoursesHandler struct {
	Pages          *Pages
	CatalogService *service.CatalogService
}

// HandleList renders every course.
func (h *CoursesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess := h.Pages.Sessions.Load(r)

	courses, err := h.CatalogService.ListCourses(r.Context())
	if err != nil {
		internalError(w, r, "failed to list courses", err)
		return
	}

	h.Pages.render(w, r, sess, "index", pageData{Courses: courses})
}

// HandleDetail renders one course. Ids that are not unsigned integers are
// treated the same as ids that do not exist.
func (h *CoursesHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 63)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	course, err := h.CatalogService.GetCourse(r.Context(), int64(id))
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, r, "failed to fetch course", err)
		return
	}

	sess := h.Pages.Sessions.Load(r)
	h.Pages.render(w, r, sess, "course", pageData{Course: course})
}
