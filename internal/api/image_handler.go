package api

import (
	"net/http"

	"github.com/blagoySimandov/imagify/internal/auth"
	"github.com/blagoySimandov/imagify/internal/imagegen"
	"github.com/blagoySimandov/imagify/internal/models"
)

type ImageHandler struct {
	gateway *imagegen.Gateway
}

func NewImageHandler(gateway *imagegen.Gateway) *ImageHandler {
	return &ImageHandler{gateway: gateway}
}

type GenerateImageRequest struct {
	Prompt string `json:"prompt"`
}

type GenerateImageResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ResultImage   string `json:"resultImage"`
	CreditBalance int64  `json:"creditBalance"`
}

func (h *ImageHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromRequest(r)
	if !ok {
		writeError(w, r, models.ErrUnauthorized, "generate")
		return
	}

	var req GenerateImageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, invalidBodyMessage)
		return
	}

	result, err := h.gateway.Generate(r.Context(), userID, req.Prompt)
	if err != nil {
		writeError(w, r, err, "generate")
		return
	}

	writeJSON(w, http.StatusOK, GenerateImageResponse{
		Success:       true,
		Message:       "Image Generated",
		ResultImage:   result.Image,
		CreditBalance: result.CreditBalance,
	})
}
