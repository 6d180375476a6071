package server

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/priyag/fraudgraph/backend/internal/domain"
	"github.com/priyag/fraudgraph/backend/internal/repository"
	"github.com/priyag/fraudgraph/backend/internal/service"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger   *zap.Logger
	service  *service.Service
	ingestor *service.BulkIngestor
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *zap.Logger, svc *service.Service, ingestor *service.BulkIngestor) *APIHandlers {
	return &APIHandlers{
		logger:   logger,
		service:  svc,
		ingestor: ingestor,
	}
}

func (h *APIHandlers) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createOrUpdateUser(w, r)
	case http.MethodGet:
		h.listUsers(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *APIHandlers) handleUserByID(w http.ResponseWriter, r *http.Request) {
	id := pathTail(r.URL.Path, "/users/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := h.service.GetUser(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, err, "fetch user")
			return
		}
		respondJSON(w, http.StatusOK, toUserResponse(user))
	case http.MethodDelete:
		if err := h.service.DeleteEntity(r.Context(), "user", id); err != nil {
			h.writeServiceError(w, err, "delete user")
			return
		}
		respondJSON(w, http.StatusOK, statusResponse{Status: "deleted", ID: id})
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func (h *APIHandlers) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createOrUpdateTransaction(w, r)
	case http.MethodGet:
		h.listTransactions(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *APIHandlers) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := pathTail(r.URL.Path, "/transactions/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "transaction ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		tx, err := h.service.GetTransaction(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, err, "fetch transaction")
			return
		}
		respondJSON(w, http.StatusOK, toTransactionResponse(tx))
	case http.MethodDelete:
		if err := h.service.DeleteEntity(r.Context(), "transaction", id); err != nil {
			h.writeServiceError(w, err, "delete transaction")
			return
		}
		respondJSON(w, http.StatusOK, statusResponse{Status: "deleted", ID: id})
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func (h *APIHandlers) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload detectRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if payload.SubjectID == "" {
		payload.SubjectID = r.URL.Query().Get("subject")
	}

	report, err := h.service.RunDetection(r.Context(), payload.SubjectID)
	if err != nil {
		h.writeServiceError(w, err, "run detection")
		return
	}

	respondJSON(w, http.StatusOK, detectResponse{
		SubjectID:    payload.SubjectID,
		EdgesCreated: report.EdgesCreated,
		FailedRules:  report.FailedRules,
	})
}

func (h *APIHandlers) handleUserRelationships(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	userID := pathTail(r.URL.Path, "/relationships/user/")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	view, err := h.service.UserGraph(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "fetch user relationships")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *APIHandlers) handleTransactionRelationships(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	txID := pathTail(r.URL.Path, "/relationships/transaction/")
	if txID == "" {
		writeError(w, http.StatusBadRequest, "transaction ID is required")
		return
	}

	view, err := h.service.TransactionGraph(r.Context(), txID)
	if err != nil {
		h.writeServiceError(w, err, "fetch transaction relationships")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *APIHandlers) handleShortestPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	result, err := h.service.ShortestPath(r.Context(), from, to)
	if err != nil {
		h.writeServiceError(w, err, "find shortest path")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *APIHandlers) handleTransactionTypeCounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	counts, err := h.service.TransactionTypeCounts(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "count transaction types")
		return
	}
	respondJSON(w, http.StatusOK, toValueCountResponses(counts))
}

func (h *APIHandlers) handleTransactionStatusCounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	counts, err := h.service.TransactionStatusCounts(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "count transaction statuses")
		return
	}
	respondJSON(w, http.StatusOK, toValueCountResponses(counts))
}

func (h *APIHandlers) handleExportUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	users, err := h.service.ExportUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "export users")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="users.csv"`)
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"id", "name", "email", "phone", "address", "country", "kycStatus", "riskScore"})
		for _, u := range users {
			_ = cw.Write([]string{
				u.ID, u.Name, u.Email, u.Phone, u.Address, u.Country, u.KYCStatus,
				strconv.FormatFloat(u.RiskScore, 'f', -1, 64),
			})
		}
		cw.Flush()
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	txs, err := h.service.ExportTransactions(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "export transactions")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"id", "originUserId", "destinationUserId", "amount", "currency", "type", "status", "ipAddress", "deviceId", "timestamp"})
		for _, tx := range txs {
			_ = cw.Write([]string{
				tx.ID, tx.OriginUserID, tx.DestinationUserID,
				strconv.FormatFloat(tx.Amount, 'f', -1, 64),
				tx.Currency, tx.Type, tx.Status, tx.IPAddress, tx.DeviceID,
				formatTime(tx.Timestamp),
			})
		}
		cw.Flush()
		return
	}

	resp := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, toTransactionResponse(tx))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) handleBulkIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if h.ingestor == nil {
		writeError(w, http.StatusServiceUnavailable, "bulk ingestion is not configured")
		return
	}

	var ds service.Dataset
	if err := decodeJSON(r, &ds); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.ingestor.Ingest(r.Context(), ds)
	if err != nil {
		h.writeServiceError(w, err, "bulk ingest")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *APIHandlers) createOrUpdateUser(w http.ResponseWriter, r *http.Request) {
	var payload service.UserInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.IngestUser(r.Context(), payload)
	if err != nil {
		h.writeServiceError(w, err, "upsert user")
		return
	}

	respondJSON(w, http.StatusCreated, statusResponse{Status: "ok", ID: user.ID})
}

func (h *APIHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := h.service.ListUsers(r.Context(), repository.ListUsersOptions{
		Offset:    parseInt(query.Get("offset"), 0),
		Limit:     parseInt(query.Get("limit"), 50),
		Search:    strings.ToLower(query.Get("search")),
		Country:   query.Get("country"),
		SortField: query.Get("sortField"),
		SortOrder: query.Get("sortOrder"),
	})
	if err != nil {
		h.writeServiceError(w, err, "list users")
		return
	}

	resp := listUsersResponse{Total: result.Total, Items: []userResponse{}}
	for _, item := range result.Items {
		resp.Items = append(resp.Items, toUserResponse(item))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) createOrUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload service.TransactionInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.service.IngestTransaction(r.Context(), payload)
	if err != nil {
		h.writeServiceError(w, err, "upsert transaction")
		return
	}

	respondJSON(w, http.StatusCreated, statusResponse{Status: "ok", ID: tx.ID})
}

func (h *APIHandlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := repository.ListTransactionsOptions{
		Offset:    parseInt(query.Get("offset"), 0),
		Limit:     parseInt(query.Get("limit"), 50),
		UserID:    query.Get("userId"),
		Status:    query.Get("status"),
		Type:      query.Get("type"),
		Search:    strings.ToLower(query.Get("search")),
		SortField: query.Get("sortField"),
		SortOrder: query.Get("sortOrder"),
	}
	if v := query.Get("minAmount"); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid minAmount")
			return
		}
		opts.MinAmount = val
	}
	if v := query.Get("maxAmount"); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid maxAmount")
			return
		}
		opts.MaxAmount = val
	}

	result, err := h.service.ListTransactions(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, err, "list transactions")
		return
	}

	resp := listTransactionsResponse{Total: result.Total, Items: []transactionResponse{}}
	for _, item := range result.Items {
		resp.Items = append(resp.Items, toTransactionResponse(item))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) writeServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.logger.Error("graph store unavailable", zap.String("action", action), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "graph store unavailable")
	default:
		h.logger.Error("request failed", zap.String("action", action), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// --- Request & Response DTOs ---

type detectRequest struct {
	SubjectID string `json:"subjectId"`
}

type detectResponse struct {
	SubjectID    string         `json:"subjectId,omitempty"`
	EdgesCreated map[string]int `json:"edgesCreated"`
	FailedRules  []string       `json:"failedRules,omitempty"`
}

type userResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	Country   string  `json:"country"`
	KYCStatus string  `json:"kycStatus"`
	RiskScore float64 `json:"riskScore"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

type transactionResponse struct {
	ID                string         `json:"id"`
	OriginUserID      string         `json:"originUserId"`
	DestinationUserID string         `json:"destinationUserId,omitempty"`
	Amount            float64        `json:"amount"`
	Currency          string         `json:"currency"`
	Type              string         `json:"type"`
	Status            string         `json:"status"`
	IPAddress         string         `json:"ipAddress,omitempty"`
	DeviceID          string         `json:"deviceId,omitempty"`
	RiskScore         float64        `json:"riskScore"`
	RiskLevel         string         `json:"riskLevel,omitempty"`
	Timestamp         string         `json:"timestamp"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

type listUsersResponse struct {
	Items []userResponse `json:"items"`
	Total int64          `json:"total"`
}

type listTransactionsResponse struct {
	Items []transactionResponse `json:"items"`
	Total int64                 `json:"total"`
}

type valueCountResponse struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

type statusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		Country:   u.Country,
		KYCStatus: u.KYCStatus,
		RiskScore: u.RiskScore,
		CreatedAt: formatTime(u.CreatedAt),
		UpdatedAt: formatTime(u.UpdatedAt),
	}
}

func toTransactionResponse(tx domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:                tx.ID,
		OriginUserID:      tx.OriginUserID,
		DestinationUserID: tx.DestinationUserID,
		Amount:            tx.Amount,
		Currency:          tx.Currency,
		Type:              tx.Type,
		Status:            tx.Status,
		IPAddress:         tx.IPAddress,
		DeviceID:          tx.DeviceID,
		RiskScore:         tx.RiskScore,
		RiskLevel:         tx.RiskLevel,
		Timestamp:         formatTime(tx.Timestamp),
		Metadata:          tx.Metadata,
	}
}

func toValueCountResponses(counts []domain.ValueCount) []valueCountResponse {
	resp := make([]valueCountResponse, 0, len(counts))
	for _, c := range counts {
		resp = append(resp, valueCountResponse{Value: c.Value, Count: c.Count})
	}
	return resp
}

// --- Helpers ---

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func pathTail(path, prefix string) string {
	return strings.Trim(strings.TrimPrefix(path, prefix), "/")
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
