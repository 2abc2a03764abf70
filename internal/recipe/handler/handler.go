package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recipebox/recipe-service/internal/recipe"
	"github.com/recipebox/recipe-service/internal/recipe/service"
	"github.com/recipebox/recipe-service/pkg/logger"
)

// Options controls the two legacy wire behaviours and error detail exposure.
type Options struct {
	// EmptyListIsError answers GET /recipes on an empty store with 400
	// instead of 200 and an empty array.
	EmptyListIsError bool
	// UpdateReturnsPatch answers PATCH with the applied fields instead of
	// the merged record.
	UpdateReturnsPatch bool
	// ExposeErrors includes the raw store error in 500 responses.
	ExposeErrors bool
}

// DefaultOptions keeps the legacy wire format.
func DefaultOptions() Options {
	return Options{EmptyListIsError: true, UpdateReturnsPatch: true, ExposeErrors: true}
}

const msgNotFound = "No recipe found"

// Handler serves the /recipes endpoints.
type Handler struct {
	svc  service.Service
	opts Options
}

func NewHandler(svc service.Service, opts Options) *Handler {
	return &Handler{svc: svc, opts: opts}
}

// RegisterRecipeRoutes mounts the recipe endpoints on r. writeMW runs in front
// of the mutating routes only (POST, PATCH, DELETE).
func RegisterRecipeRoutes(r gin.IRouter, svc service.Service, opts Options, writeMW ...gin.HandlerFunc) {
	h := NewHandler(svc, opts)
	write := func(final gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(writeMW)+1)
		chain = append(chain, writeMW...)
		return append(chain, final)
	}
	g := r.Group("/recipes")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", write(h.Create)...)
	g.PATCH("/:id", write(h.Update)...)
	g.DELETE("/:id", write(h.Delete)...)
}

// Create accepts { title, making_time, serves, ingredients, cost }.
func (h *Handler) Create(c *gin.Context) {
	var req recipe.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debugf("create: bind failed: %v", err)
		h.creationFailed(c)
		return
	}
	rec, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRecipe) {
			logger.Debugf("create: %v", err)
			h.creationFailed(c)
			return
		}
		h.storeError(c, "Error creating recipe", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe successfully created!", "recipe": []*recipe.Recipe{rec}})
}

func (h *Handler) creationFailed(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Recipe creation failed!", "required": recipe.RequiredFields})
}

// List returns every stored recipe, unordered.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.storeError(c, "Error fetching recipes", err)
		return
	}
	if len(list) == 0 {
		if h.opts.EmptyListIsError {
			c.JSON(http.StatusBadRequest, gin.H{"message": "No recipes found!"})
			return
		}
		list = []*recipe.Recipe{}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successful!", "response": list})
}

func (h *Handler) Get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
			return
		}
		h.storeError(c, "Error fetching recipe", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe details by id", "response": []*recipe.Recipe{rec}})
}

// Update merges a partial body into the stored recipe. Unknown fields, and the
// id and timestamp fields, are rejected. An unknown id is a 404 whatever the body.
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.svc.Get(ctx, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
			return
		}
		h.storeError(c, "Error updating recipe", err)
		return
	}
	patch, err := decodePatch(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Recipe update failed!", "error": err.Error()})
		return
	}
	res, err := h.svc.Update(ctx, c.Param("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
		case errors.Is(err, service.ErrInvalidPatch):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Recipe update failed!", "error": err.Error()})
		default:
			h.storeError(c, "Error updating recipe", err)
		}
		return
	}
	if !h.opts.UpdateReturnsPatch {
		c.JSON(http.StatusOK, gin.H{"message": "Recipe successfully updated!", "response": []*recipe.Recipe{res.Recipe}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe successfully updated!", "response": []map[string]any{wireChanges(res.Changes)}})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
			return
		}
		h.storeError(c, "Error deleting recipe", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe successfully removed!"})
}

func (h *Handler) storeError(c *gin.Context, msg string, err error) {
	logger.Errorf("%s %s: %s: %v", c.Request.Method, c.Request.URL.Path, msg, err)
	body := gin.H{"message": msg}
	if h.opts.ExposeErrors {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

// decodePatch reads the request body strictly against recipe.Patch.
// An empty body is an empty patch.
func decodePatch(body io.Reader) (*recipe.Patch, error) {
	var p recipe.Patch
	if body == nil {
		return &p, nil
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return &p, nil
		}
		return nil, err
	}
	return &p, nil
}

func wireChanges(changes map[string]any) map[string]any {
	out := make(map[string]any, len(changes))
	for k, v := range changes {
		out[k] = v
	}
	if ts, ok := changes[recipe.FieldUpdatedAt].(time.Time); ok {
		out[recipe.FieldUpdatedAt] = recipe.FormatTime(ts)
	}
	return out
}
