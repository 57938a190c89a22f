// Package bench собирает и агрегирует результаты замеров транскрипции
package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunMetrics метрики одного замера
type RunMetrics struct {
	ProcessingSeconds float64 `json:"processing_seconds"`
	RealTimeFactor    float64 `json:"real_time_factor"`
	SegmentsDecoded   int     `json:"segments_decoded"`
}

// FileResult результат замеров одного файла на одном устройстве
type FileResult struct {
	Path         string       `json:"path"`
	SizeBytes    int64        `json:"size_bytes"`
	AudioSeconds float64      `json:"audio_seconds"`
	Runs         []RunMetrics `json:"runs,omitempty"`
	Attempts     int          `json:"attempts"`
	Error        string       `json:"error,omitempty"`
}

// OK сообщает, был ли файл успешно обработан
func (r *FileResult) OK() bool { return r.Error == "" && len(r.Runs) > 0 }

// DevicePass все результаты одного прохода по устройству
type DevicePass struct {
	Device    string       `json:"device"`
	Precision string       `json:"precision"`
	Files     []FileResult `json:"files"`
	Summary   PassSummary  `json:"summary"`
}

// PassSummary агрегаты прохода (считаются в Finalize)
type PassSummary struct {
	FilesOK                 int     `json:"files_ok"`
	FilesFailed             int     `json:"files_failed"`
	TotalAudioSeconds       float64 `json:"total_audio_seconds"`
	TotalWallSeconds        float64 `json:"total_wall_seconds"`
	MeanProcessingSeconds   float64 `json:"mean_processing_seconds"`
	StdDevProcessingSeconds float64 `json:"stddev_processing_seconds"`
	MeanRealTimeFactor      float64 `json:"mean_real_time_factor"`
	MedianRealTimeFactor    float64 `json:"median_real_time_factor"`
	MinRealTimeFactor       float64 `json:"min_real_time_factor"`
	MaxRealTimeFactor       float64 `json:"max_real_time_factor"`
	WallSecondsPerAudioHour float64 `json:"wall_seconds_per_audio_hour"`
}

// Report полный отчёт сравнительного прогона
type Report struct {
	ID               string       `json:"id"`
	TimestampRFC3339 string       `json:"timestamp_rfc3339"`
	Label            string       `json:"label"`
	Profile          string       `json:"profile"`
	Language         string       `json:"language,omitempty"`
	Repeats          int          `json:"repeats"`
	System           SystemInfo   `json:"system"`
	Passes           []DevicePass `json:"passes"`
	// Ускорение среднего RTF лучшего прохода над худшим (заполняется в Finalize)
	Speedup float64 `json:"speedup,omitempty"`
}

// NewReport создаёт отчёт с идентификатором и таймстемпом
func NewReport(label, profile, language string, repeats int, system SystemInfo) *Report {
	return &Report{
		ID:               uuid.NewString(),
		TimestampRFC3339: time.Now().Format(time.RFC3339),
		Label:            label,
		Profile:          profile,
		Language:         language,
		Repeats:          repeats,
		System:           system,
	}
}

// Finalize считает агрегаты всех проходов и общий speedup
func (r *Report) Finalize() {
	for i := range r.Passes {
		r.Passes[i].Summary = summarize(r.Passes[i].Files)
	}

	// Speedup: отношение лучшего среднего RTF к худшему среди успешных проходов
	var best, worst float64
	for _, pass := range r.Passes {
		rtf := pass.Summary.MeanRealTimeFactor
		if rtf <= 0 {
			continue
		}
		if best == 0 || rtf > best {
			best = rtf
		}
		if worst == 0 || rtf < worst {
			worst = rtf
		}
	}
	if worst > 0 && best > worst {
		r.Speedup = best / worst
	}
}

// WriteJSON пишет отчёт в файл (или stdout при пустом пути)
func (r *Report) WriteJSON(outPath string) error {
	if outPath == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	if dir := filepath.Dir(outPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// RenderMarkdown рендерит сводку отчёта в markdown
func (r *Report) RenderMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transcription Benchmark %s\n\n", r.ID)
	fmt.Fprintf(&b, "**Date**: %s\n", r.TimestampRFC3339)
	if r.Label != "" {
		fmt.Fprintf(&b, "**Label**: %s\n", r.Label)
	}
	fmt.Fprintf(&b, "**Profile**: %s\n", r.Profile)
	fmt.Fprintf(&b, "**System**: %s, %d logical CPUs, %s/%s\n", r.System.CPUModel, r.System.NumCPU, r.System.OS, r.System.Arch)
	if r.System.GPUName != "" {
		fmt.Fprintf(&b, "**GPU**: %s\n", r.System.GPUName)
	}
	b.WriteString("\n| Device | Files OK | Mean RTF | Median RTF | Mean proc (s) | Wall s / audio h |\n")
	b.WriteString("|--------|----------|----------|------------|---------------|------------------|\n")
	for _, pass := range r.Passes {
		s := pass.Summary
		fmt.Fprintf(&b, "| %s (%s) | %d/%d | %.2fx | %.2fx | %.2f | %.0f |\n",
			pass.Device, pass.Precision, s.FilesOK, s.FilesOK+s.FilesFailed,
			s.MeanRealTimeFactor, s.MedianRealTimeFactor, s.MeanProcessingSeconds, s.WallSecondsPerAudioHour)
	}
	if r.Speedup > 0 {
		fmt.Fprintf(&b, "\n**Speedup (best vs worst pass)**: %.1fx\n", r.Speedup)
	}
	return b.String()
}

// sortedRTFs собирает RTF всех замеров прохода по возрастанию
func sortedRTFs(files []FileResult) []float64 {
	var rtfs []float64
	for _, fr := range files {
		for _, run := range fr.Runs {
			rtfs = append(rtfs, run.RealTimeFactor)
		}
	}
	sort.Float64s(rtfs)
	return rtfs
}
