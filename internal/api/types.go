package api

import (
	"whisperbench/ai"
	"whisperbench/internal/bench"
	"whisperbench/internal/service"
	"whisperbench/models"
)

// Message структура WebSocket сообщения
type Message struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`

	// Параметры транскрипции и прогона
	Path      string `json:"path,omitempty"`
	Dir       string `json:"dir,omitempty"`
	Language  string `json:"language,omitempty"`
	Profile   string `json:"profile,omitempty"`
	Device    string `json:"device,omitempty"`
	Precision string `json:"precision,omitempty"`
	Label     string `json:"label,omitempty"`

	// Ответы
	Result  *ai.Result    `json:"result,omitempty"`
	Report  *bench.Report `json:"report,omitempty"`
	Reports []ReportInfo  `json:"reports,omitempty"`

	// Устройства
	Devices []DeviceInfo `json:"devices,omitempty"`

	// Модели
	Models   []models.ModelState `json:"models,omitempty"`
	ModelID  string              `json:"modelId,omitempty"`
	Progress float64             `json:"progress,omitempty"`
	Error    string              `json:"error,omitempty"`

	// Ход прогона
	Event *service.ProgressEvent `json:"event,omitempty"`
}

// DeviceInfo устройство, доступное раннеру
type DeviceInfo struct {
	Device    string `json:"device"`
	Precision string `json:"precision"`
	Available bool   `json:"available"`
	GPUName   string `json:"gpuName,omitempty"`
	FreeBytes uint64 `json:"freeBytes,omitempty"`
}

// ReportInfo сохранённый отчёт в директории данных
type ReportInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
}
