package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pagoa/brewops/internal/domain/costs"
	"github.com/pagoa/brewops/internal/domain/materials"
	"github.com/pagoa/brewops/internal/domain/production"
	"github.com/pagoa/brewops/internal/domain/recipes"
	"github.com/pagoa/brewops/internal/domain/sales"
)

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", r.PathValue("id"), production.ErrValidation)
	}
	return id, nil
}

/* Materials */

type materialRequest struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Stock        float64  `json:"stock"`
	Unit         string   `json:"unit"`
	ReorderPoint float64  `json:"reorder_point"`
	UnitCost     float64  `json:"unit_cost"`
	CapacityL    *float64 `json:"capacity_l,omitempty"`
}

type materialResponse struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Stock        float64  `json:"stock"`
	Unit         string   `json:"unit"`
	ReorderPoint float64  `json:"reorder_point"`
	UnitCost     float64  `json:"unit_cost"`
	CapacityL    *float64 `json:"capacity_l,omitempty"`
}

func toMaterialResponse(m *materials.Material) materialResponse {
	return materialResponse{
		ID: m.ID, Name: m.Name, Type: string(m.Type), Stock: m.Stock,
		Unit: m.Unit, ReorderPoint: m.ReorderPoint, UnitCost: m.UnitCost, CapacityL: m.CapacityL,
	}
}

func (s *Server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Materials.List(r.Context(), materials.Type(r.URL.Query().Get("type")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]materialResponse, 0, len(list))
	for i := range list {
		out = append(out, toMaterialResponse(&list[i]))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if err := decode(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	m, err := s.deps.Materials.Create(r.Context(), &materials.Material{
		Name: req.Name, Type: materials.Type(req.Type), Stock: req.Stock,
		Unit: req.Unit, ReorderPoint: req.ReorderPoint, UnitCost: req.UnitCost, CapacityL: req.CapacityL,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toMaterialResponse(m))
}

func (s *Server) handleUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req materialRequest
	if err := decode(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	m, err := s.deps.Materials.Update(r.Context(), &materials.Material{
		ID: id, Name: req.Name, Type: materials.Type(req.Type), Stock: req.Stock,
		Unit: req.Unit, ReorderPoint: req.ReorderPoint, UnitCost: req.UnitCost, CapacityL: req.CapacityL,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if m == nil {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "material not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, toMaterialResponse(m))
}

func (s *Server) handleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.deps.Materials.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Delta float64 `json:"delta"`
	}
	if err := decode(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	m, err := s.deps.Materials.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if m == nil {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "material not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, toMaterialResponse(m))
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Materials.ListBelowReorder(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]materialResponse, 0, len(list))
	for i := range list {
		out = append(out, toMaterialResponse(&list[i]))
	}
	s.writeJSON(w, http.StatusOK, out)
}

/* Recipes */

type recipeLineRequest struct {
	Style         string  `json:"style"`
	OperationType string  `json:"operation_type"`
	MaterialName  string  `json:"material_name"`
	QtyPer100L    float64 `json:"qty_per_100l"`
	Unit          string  `json:"unit"`
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lines, err := s.deps.Recipes.ListFor(r.Context(), q.Get("style"), recipes.OperationType(q.Get("operation_type")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lines)
}

func (s *Server) handleCreateRecipeLine(w http.ResponseWriter, r *http.Request) {
	var req recipeLineRequest
	if err := decode(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	line, err := s.deps.Recipes.Create(r.Context(), &recipes.Line{
		Style: req.Style, OperationType: recipes.OperationType(req.OperationType),
		MaterialName: req.MaterialName, QtyPer100L: req.QtyPer100L, Unit: req.Unit,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, line)
}

func (s *Server) handleUpdateRecipeLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req recipeLineRequest
	if err := decode(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	err = s.deps.Recipes.Update(r.Context(), &recipes.Line{
		ID: id, Style: req.Style, OperationType: recipes.OperationType(req.OperationType),
		MaterialName: req.MaterialName, QtyPer100L: req.QtyPer100L, Unit: req.Unit,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRecipeLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.deps.Recipes.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListStyles(w http.ResponseWriter, r *http.Request) {
	styles, err := s.deps.Recipes.ListStyles(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, styles)
}

/* Production operations */

type draftRequest struct {
	Date          string  `json:"date"` // YYYY-MM-DD
	OperationType string  `json:"operation_type"`
	LotNumber     string  `json:"lot_number"`
	Style         string  `json:"style"`
	VolumeL       float64 `json:"volume_l"`
	Location      string  `json:"location"`
	ContainerType string  `json:"container_type"`
	ClosureType   string  `json:"closure_type"`
	LabelType     string  `json:"label_type"`
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decode(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "date must be YYYY-MM-DD"})
			return
		}
	}
	op, est, err := s.deps.Production.CreateDraft(r.Context(), &production.Operation{
		Date:          date,
		OperationType: recipes.OperationType(req.OperationType),
		LotNumber:     req.LotNumber,
		Style:         req.Style,
		VolumeL:       req.VolumeL,
		Location:      req.Location,
		ContainerType: req.ContainerType,
		ClosureType:   req.ClosureType,
		LabelType:     req.LabelType,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, struct {
		Operation *production.Operation `json:"operation"`
		Estimate  *production.Estimate  `json:"estimate"`
	}{op, est})
}

func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	var (
		ops []production.Operation
		err error
	)
	if lot := r.URL.Query().Get("lot"); lot != "" {
		ops, err = s.deps.Operations.ListByLot(r.Context(), lot)
	} else {
		ops, err = s.deps.Operations.List(r.Context())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ops)
}

func (s *Server) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	op, err := s.deps.Operations.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if op == nil {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "operation not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, op)
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.deps.Production.DeleteDraft(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	volume, err := strconv.ParseFloat(q.Get("volume_l"), 64)
	if err != nil || volume <= 0 {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "volume_l must be a positive number"})
		return
	}
	est, err := s.deps.Production.Estimate(r.Context(), q.Get("style"), recipes.OperationType(q.Get("operation_type")), volume)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, est)
}

// handleConfirm runs the confirmation workflow. On failure the response
// tells the operator whether any side effect was applied before the error:
// a 4xx with partially_applied=false means nothing happened, anything
// with partially_applied=true means stock/audit rows need review.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.deps.Production.Confirm(r.Context(), id)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusBadGateway {
			s.deps.Log.Error("confirmation failed", "operation_id", id, "applied", res.Applied, "err", err)
		}
		s.writeJSON(w, status, errorBody{Error: err.Error(), PartiallyApplied: res.Applied})
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

/* Finished goods, history */

func (s *Server) handleListFinished(w http.ResponseWriter, r *http.Request) {
	lots, err := s.deps.Finished.ListWithAvailability(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lots)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if lot := r.URL.Query().Get("lot"); lot != "" {
		entries, err := s.deps.History.ListByLot(r.Context(), lot)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, entries)
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := s.deps.History.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

/* Sales */

type saleRequest struct {
	Date         string  `json:"date"`
	LotNumber    string  `json:"lot_number"`
	Customer     string  `json:"customer"`
	Presentation string  `json:"presentation"`
	Quantity     int64   `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Channel      string  `json:"channel"`
}

func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		s.writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}
	var req saleRequest
	if err := decode(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "date must be YYYY-MM-DD"})
		return
	}
	if req.Quantity <= 0 || req.LotNumber == "" {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "lot_number and a positive quantity are required"})
		return
	}

	lot, err := s.deps.Finished.GetByLotAndContainer(r.Context(), req.LotNumber, req.Presentation)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if lot == nil {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "finished lot not found"})
		return
	}

	// Availability is enforced inside Create, atomically with the insert.
	sale, err := s.deps.Sales.Create(r.Context(), &sales.Sale{
		Date: date, LotNumber: req.LotNumber, Customer: req.Customer,
		Style: lot.Style, Presentation: req.Presentation,
		Quantity: req.Quantity, UnitPrice: req.UnitPrice, Channel: req.Channel, CreatedBy: uid,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sale)
}

func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Sales.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.deps.Sales.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/* Fixed costs and reports */

func monthYear(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month must be 1-12")
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year < 2000 {
		return 0, 0, fmt.Errorf("year is required")
	}
	return month, year, nil
}

func (s *Server) handleListFixedCosts(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthYear(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	list, err := s.deps.Costs.ListMonth(r.Context(), month, year)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleReplaceFixedCosts(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthYear(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	var req []struct {
		Concept string  `json:"concept"`
		Amount  float64 `json:"amount"`
	}
	if err := decode(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	items := make([]costs.FixedCost, 0, len(req))
	for _, c := range req {
		items = append(items, costs.FixedCost{Concept: c.Concept, Amount: c.Amount})
	}
	if err := s.deps.Costs.ReplaceMonth(r.Context(), month, year, items); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthYear(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	sum, err := s.deps.Reports.MonthlySummary(r.Context(), month, year)
	if err != nil {
		s.writeError(w, err)
		return
	}
	styles, err := s.deps.Reports.StyleAnalysis(r.Context(), month, year)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		Summary any `json:"summary"`
		Styles  any `json:"styles"`
	}{sum, styles})
}

func (s *Server) handleMonthlyReportXLSX(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthYear(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	data, err := s.deps.Reports.ExportXLSX(r.Context(), month, year)
	if err != nil {
		s.writeError(w, err)
		return
	}
	name := fmt.Sprintf("report_%d%02d.xlsx", year, month)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write(data)
}
