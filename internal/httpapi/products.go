// Product handlers. Workspaces partition the catalog; deleting a product is
// a soft transition to Trashed so it stays visible in the trash view.
package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/bossops/opsdeck/internal/ops"
	"github.com/bossops/opsdeck/internal/storage"
)

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	workspace := r.URL.Query().Get("workspace")
	if workspace == "" {
		workspace = ops.DefaultWorkspace
	}
	rows, err := s.store.SelectAll(r.Context(), storage.CollectionProducts, storage.Query{
		Filters: storage.Filters{"workspace": workspace},
	})
	if err != nil {
		serverError(w, err, "could not fetch products")
		return
	}
	products, err := storage.DecodeAll[ops.Product](rows)
	if err != nil {
		serverError(w, err, "could not decode products")
		return
	}
	toJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	row, found, err := s.store.SelectOne(r.Context(), storage.CollectionProducts, id)
	if err != nil {
		serverError(w, err, "could not fetch product")
		return
	}
	if !found {
		notFound(w, "product not found")
		return
	}
	var product ops.Product
	if err := storage.Decode(row, &product); err != nil {
		serverError(w, err, "could not decode product")
		return
	}
	toJSON(w, http.StatusOK, product)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == "" || req.ProductID == "" || req.OperatorID == "" {
		badRequest(w, "name, productId and operatorId are required")
		return
	}
	status := ops.StatusPending
	if req.Status != "" {
		if !validStatus(req.Status) {
			badRequest(w, "invalid status: "+req.Status)
			return
		}
		status = ops.ProductStatus(req.Status)
	}
	workspace := req.Workspace
	if workspace == "" {
		workspace = ops.DefaultWorkspace
	}
	product := ops.Product{
		Name:             req.Name,
		ProductID:        req.ProductID,
		Image:            req.Image,
		StoreName:        req.StoreName,
		Link:             req.Link,
		ProfitLink:       req.ProfitLink,
		ImagePackagePath: req.ImagePackagePath,
		OperatorID:       req.OperatorID,
		Status:           status,
		Workspace:        workspace,
		DayCount:         0,
		History:          []map[string]any{},
		TaskProgress:     map[string]any{},
		Strategy:         req.Strategy,
		LifecycleStage:   ops.LifecycleStage(req.LifecycleStage),
	}
	row, err := storage.Encode(product)
	if err != nil {
		serverError(w, err, "could not encode product")
		return
	}
	created, err := s.store.Insert(r.Context(), storage.CollectionProducts, row)
	if err != nil {
		serverError(w, err, "could not create product")
		return
	}
	if err := storage.Decode(created, &product); err != nil {
		serverError(w, err, "could not decode product")
		return
	}
	toJSON(w, http.StatusCreated, product)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateProductRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Status != nil && !validStatus(*req.Status) {
		badRequest(w, "invalid status: "+*req.Status)
		return
	}
	patch := req.patch()
	if len(patch) == 0 {
		badRequest(w, "no update data")
		return
	}
	row, found, err := s.store.Update(r.Context(), storage.CollectionProducts, id, patch)
	if err != nil {
		serverError(w, err, "could not update product")
		return
	}
	if !found {
		notFound(w, "product not found")
		return
	}
	var product ops.Product
	if err := storage.Decode(row, &product); err != nil {
		serverError(w, err, "could not decode product")
		return
	}
	toJSON(w, http.StatusOK, product)
}

// deleteProduct never removes the row; it parks the product in Trashed.
func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_, _, err := s.store.Update(r.Context(), storage.CollectionProducts, id, storage.Row{
		"status": string(ops.StatusTrashed),
	})
	if err != nil {
		serverError(w, err, "could not trash product")
		return
	}
	toJSON(w, http.StatusOK, okResponse{OK: true})
}

func validStatus(s string) bool {
	switch ops.ProductStatus(s) {
	case ops.StatusPending, ops.StatusActive, ops.StatusAbandoned, ops.StatusMaintenance, ops.StatusTrashed:
		return true
	}
	return false
}
