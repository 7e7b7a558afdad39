package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ayusutra-api/internal/directory"
	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/internal/service/search"
	"github.com/jwalitptl/ayusutra-api/internal/telephony"
	apperrors "github.com/jwalitptl/ayusutra-api/pkg/errors"
	"github.com/jwalitptl/ayusutra-api/pkg/httputil"
)

type Handler struct {
	directory *directory.Directory
	engine    *search.Engine
}

func NewHandler(dir *directory.Directory, engine *search.Engine) *Handler {
	return &Handler{directory: dir, engine: engine}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/specialties", h.ListSpecialties)
		doctors.GET("/:id", h.GetDoctor)
		doctors.GET("/:id/call", h.CallDoctor)
	}
}

type listQuery struct {
	Query     string `form:"q"`
	Specialty string `form:"specialty"`
	Sort      string `form:"sort"`
}

func (h *Handler) ListDoctors(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid query", err))
		return
	}

	sortKey, err := search.ParseSortKey(q.Sort)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(map[string]string{
			"sort": "sort must be one of default, distance, rating, name",
		}, err))
		return
	}

	result := h.engine.Update(c.Request.Context(), model.SearchCriteria{
		Query:     q.Query,
		Specialty: search.NormalizeSpecialty(q.Specialty),
		Sort:      sortKey,
	})

	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) ListSpecialties(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.engine.Specialties())
}

func (h *Handler) GetDoctor(c *gin.Context) {
	doc, err := h.directory.Get(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doc)
}

// CallDoctor redirects to a tel: link for the doctor's number, or the
// emergency number when none is listed.
func (h *Handler) CallDoctor(c *gin.Context) {
	doc, err := h.directory.Get(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, telephony.DialURI(doc.ContactNumber))
}
