package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/carbnb/apiserver/internal/services"
	"github.com/carbnb/apiserver/types"
)

const (
	maxMultipartMemory = 32 << 20
	maxImageBytes      = 10 << 20

	formFieldBrand        = "brand"
	formFieldModel        = "model"
	formFieldYear         = "year"
	formFieldPrice        = "price"
	formFieldCategory     = "category"
	formFieldTransmission = "transmission"
	formFieldFuel         = "fuel"
	formFieldSeats        = "seats"
	formFieldFeatures     = "features"
	formFieldWilaya       = "wilaya"
	formFieldCommune      = "commune"
	formFieldChauffeur    = "chauffeur"
	formFieldImage        = "image"
)

// CarHandler provides HTTP handlers for car listings.
type CarHandler struct {
	carService *services.CarService
}

// NewCarHandler constructs a handler with the provided service.
func NewCarHandler(carService *services.CarService) *CarHandler {
	return &CarHandler{carService: carService}
}

// CarRouter registers car routes on the given router.
func CarRouter(r chi.Router, carService *services.CarService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewCarHandler(carService)

	r.Get("/", handler.ListCars)
	r.Get("/image/*", handler.CarImage)
	r.With(authMiddleware, RequireRole(types.RoleOwner)).Post("/", handler.SubmitCar)
	r.With(authMiddleware, RequireRole(types.RoleOwner)).Get("/owner", handler.OwnerCars)
	r.With(authMiddleware, RequireRole(types.RoleOwner)).Put("/edit/{carID}", handler.EditCar)
	r.With(authMiddleware, RequireRole(types.RoleAdmin)).Get("/pending", handler.PendingCars)
	r.With(authMiddleware, RequireRole(types.RoleAdmin)).Put("/approve/{carID}", handler.ApproveCar)
	r.With(authMiddleware, RequireRole(types.RoleAdmin)).Put("/reject/{carID}", handler.RejectCar)
	r.With(authMiddleware, RequireRole(types.RoleAdmin)).Post("/delete-by-ids", handler.DeleteCars)
}

// ListCars returns the public catalog of approved listings.
func (h *CarHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.carService.ListApproved(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list cars")
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

// CarImage streams a stored listing photo.
func (h *CarHandler) CarImage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		writeError(w, http.StatusBadRequest, "image key is required")
		return
	}

	reader, contentType, err := h.carService.Image(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	_, _ = io.Copy(w, reader)
}

// SubmitCar creates a pending listing from a multipart form with an
// image file.
func (h *CarHandler) SubmitCar(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	draft, image, err := parseCarForm(r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	car, err := h.carService.Submit(r.Context(), principal, draft, *image)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, car)
}

// OwnerCars returns the caller's listings, any status.
func (h *CarHandler) OwnerCars(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cars, err := h.carService.ListOwned(r.Context(), principal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list cars")
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

// PendingCars returns listings awaiting admin review.
func (h *CarHandler) PendingCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.carService.ListPending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list cars")
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

// ApproveCar marks a listing approved.
func (h *CarHandler) ApproveCar(w http.ResponseWriter, r *http.Request) {
	id, err := parseCarID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	car, err := h.carService.Approve(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

// RejectCar marks a listing rejected, with an optional reason and
// definitive flag.
func (h *CarHandler) RejectCar(w http.ResponseWriter, r *http.Request) {
	id, err := parseCarID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req RejectCarRequest
	if r.Body != nil {
		// Missing body means no reason.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	car, err := h.carService.Reject(r.Context(), id, strings.TrimSpace(req.RejectionReason), req.Definitive)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

// EditCar resubmits a pending or rejected listing with replaced fields
// and an optional new image.
func (h *CarHandler) EditCar(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseCarID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, image, err := parseCarForm(r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	car, err := h.carService.Edit(r.Context(), principal, id, draft, image)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

// DeleteCars bulk-deletes listings by identifier.
func (h *CarHandler) DeleteCars(w http.ResponseWriter, r *http.Request) {
	var req DeleteCarsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}

	ids := make([]int, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || id < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid car id %q", raw))
			return
		}
		ids = append(ids, id)
	}

	result, err := h.carService.DeleteByIDs(r.Context(), ids)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type RejectCarRequest struct {
	RejectionReason string `json:"rejection_reason"`
	Definitive      bool   `json:"definitive"`
}

type DeleteCarsRequest struct {
	IDs []string `json:"ids"`
}

func parseCarID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "carID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid car id")
	}
	return id, nil
}

func parseCarForm(r *http.Request, imageRequired bool) (services.CarDraft, *services.ImageUpload, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return services.CarDraft{}, nil, errors.New("invalid multipart form")
	}

	year, err := strconv.Atoi(strings.TrimSpace(r.FormValue(formFieldYear)))
	if err != nil {
		return services.CarDraft{}, nil, errors.New("year must be a number")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue(formFieldPrice)), 64)
	if err != nil {
		return services.CarDraft{}, nil, errors.New("price must be a number")
	}
	seats, err := strconv.Atoi(strings.TrimSpace(r.FormValue(formFieldSeats)))
	if err != nil {
		return services.CarDraft{}, nil, errors.New("seats must be a number")
	}

	draft := services.CarDraft{
		Brand:        strings.TrimSpace(r.FormValue(formFieldBrand)),
		Model:        strings.TrimSpace(r.FormValue(formFieldModel)),
		Year:         year,
		Price:        price,
		Category:     types.CarCategory(strings.TrimSpace(r.FormValue(formFieldCategory))),
		Transmission: types.Transmission(strings.TrimSpace(r.FormValue(formFieldTransmission))),
		Fuel:         types.FuelType(strings.TrimSpace(r.FormValue(formFieldFuel))),
		Seats:        seats,
		Features:     parseFeatures(r.FormValue(formFieldFeatures)),
		Wilaya:       strings.TrimSpace(r.FormValue(formFieldWilaya)),
		Commune:      strings.TrimSpace(r.FormValue(formFieldCommune)),
		Chauffeur:    parseCheckbox(r.FormValue(formFieldChauffeur)),
	}

	image, err := parseImageFile(r.MultipartForm)
	if err != nil {
		return services.CarDraft{}, nil, err
	}
	if image == nil && imageRequired {
		return services.CarDraft{}, nil, errors.New("image file is required")
	}
	return draft, image, nil
}

func parseFeatures(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	features := make([]string, 0, len(parts))
	for _, part := range parts {
		feature := strings.TrimSpace(part)
		if feature != "" {
			features = append(features, feature)
		}
	}
	return features
}

func parseCheckbox(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parseImageFile(form *multipart.Form) (*services.ImageUpload, error) {
	if form == nil {
		return nil, errors.New("missing form data")
	}

	files := form.File[formFieldImage]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		return nil, errors.New("only one image file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	data, err := readFileLimited(file, maxImageBytes)
	_ = file.Close()
	if err != nil {
		return nil, err
	}

	return &services.ImageUpload{
		Filename: fileHeader.Filename,
		Data:     data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
