package server

import "github.com/miru/classet/classifier"

const Version = "0.1.0"

type PredictionResponse struct {
	Success     bool                    `json:"success"`
	Predictions []classifier.Prediction `json:"predictions"`
	Message     string                  `json:"message"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	ModelLoaded bool   `json:"model_loaded"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
