package server

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"strconv"

	_ "github.com/gen2brain/avif"
	_ "golang.org/x/image/webp"

	"github.com/gin-gonic/gin"
	"github.com/miru/classet/classifier"
	"github.com/miru/classet/config"
)

var errUnauthorized = errors.New("unauthorized")

// Predictor is the inference surface the handlers depend on.
type Predictor interface {
	Predict(img image.Image, topK int) ([]classifier.Prediction, error)
	Ready() bool
}

type Handler struct {
	classifier     Predictor
	token          string
	defaultTopK    int
	maxTopK        int
	maxUploadBytes int64
}

func NewHandler(p Predictor) *Handler {
	cfg := config.C()
	return &Handler{
		classifier:     p,
		token:          cfg.Token,
		defaultTopK:    cfg.DefaultTopK,
		maxTopK:        cfg.MaxTopK,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
}

func (h *Handler) authenticate(c *gin.Context) error {
	if h.token == "" {
		return nil
	}
	auth := c.GetHeader("Authorization")
	providedToken := ""
	if len(auth) > 7 && auth[:7] == "Bearer " {
		providedToken = auth[7:]
	}
	if subtle.ConstantTimeCompare([]byte(providedToken), []byte(h.token)) != 1 {
		return errUnauthorized
	}
	return nil
}

func (h *Handler) Predict(c *gin.Context) {
	if err := h.authenticate(c); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	topK := h.defaultTopK
	if raw := c.Query("top_k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "top_k must be an integer"})
			return
		}
		topK = v
	}
	if topK < 1 || topK > h.maxTopK {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("top_k must be between 1 and %d", h.maxTopK),
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no file uploaded, use form field 'file'"})
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("file too large, max %d bytes", h.maxUploadBytes),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to open uploaded file"})
		return
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "undecodable image, supported formats: jpeg, png, webp, avif"})
		return
	}

	preds, err := h.classifier.Predict(img, topK)
	if err != nil {
		switch {
		case errors.Is(err, classifier.ErrInvalidImage), errors.Is(err, classifier.ErrInvalidTopK):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			slog.Error("Prediction failed",
				slog.String("file", fileHeader.Filename),
				slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "prediction failed"})
		}
		return
	}

	slog.Info("Prediction completed",
		slog.String("file", fileHeader.Filename),
		slog.String("format", format),
		slog.String("top_class", preds[0].Label))

	c.JSON(http.StatusOK, PredictionResponse{
		Success:     true,
		Predictions: preds,
		Message:     fmt.Sprintf("successfully classified %s", fileHeader.Filename),
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		Version:     Version,
		ModelLoaded: h.classifier.Ready(),
	})
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "classet",
		"version": Version,
		"health":  "/health",
		"predict": "/predict",
	})
}
