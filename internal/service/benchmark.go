// Package service содержит оркестрацию прогонов транскрипции
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"whisperbench/ai"
	"whisperbench/audio"
	"whisperbench/internal/bench"
)

// ProgressEvent событие хода прогона для UI/логов
type ProgressEvent struct {
	Type   string  `json:"type"` // pass_started, file_started, file_finished, file_failed, pass_finished
	Device string  `json:"device,omitempty"`
	File   string  `json:"file,omitempty"`
	Index  int     `json:"index,omitempty"` // номер файла в проходе, с 1
	Total  int     `json:"total,omitempty"`
	RTF    float64 `json:"rtf,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// ProgressFunc callback хода прогона
type ProgressFunc func(event ProgressEvent)

// BenchmarkService прогоняет Runner по наборам файлов и устройствам.
/// Прогоны сериализуются: одновременные замеры на одном устройстве
// делили бы память и искажали бы тайминги.
type BenchmarkService struct {
	Runner     *ai.Runner
	Profile    ai.Profile
	Language   string
	Repeats    int  // измеряемых замеров на файл
	Warmup     bool // один неизмеряемый прогон перед проходом
	OnProgress ProgressFunc

	mu sync.Mutex
}

// NewBenchmarkService создаёт сервис с дефолтами
func NewBenchmarkService(runner *ai.Runner, profile ai.Profile, language string) *BenchmarkService {
	return &BenchmarkService{
		Runner:   runner,
		Profile:  profile,
		Language: language,
		Repeats:  1,
	}
}

// RunComparison прогоняет все файлы на каждом устройстве и собирает отчёт
func (s *BenchmarkService) RunComparison(ctx context.Context, devices []ai.Device, files []string, label string, system bench.SystemInfo) (*bench.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(files) == 0 {
		return nil, fmt.Errorf("no audio files to benchmark")
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no devices to benchmark")
	}

	report := bench.NewReport(label, string(s.Profile), s.Language, s.repeats(), system)
	for _, device := range devices {
		pass := s.runPass(ctx, device, files)
		report.Passes = append(report.Passes, pass)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	report.Finalize()
	return report, nil
}

// runPass прогоняет все файлы на одном устройстве
func (s *BenchmarkService) runPass(ctx context.Context, device ai.Device, files []string) bench.DevicePass {
	pass := bench.DevicePass{
		Device:    string(device),
		Precision: string(ai.PrecisionFor(device)),
	}
	s.notify(ProgressEvent{Type: "pass_started", Device: string(device), Total: len(files)})
	log.Printf("BenchmarkService: pass on %s: %d files, %d repeats", device, len(files), s.repeats())

	if s.Warmup {
		// Неизмеряемый прогрев: первый замер на холодном кэше всегда медленнее
		if _, err := s.runOnce(ctx, device, files[0]); err != nil {
			log.Printf("BenchmarkService: warmup on %s failed: %v", device, err)
		}
	}

	for i, file := range files {
		if ctx.Err() != nil {
			break
		}
		s.notify(ProgressEvent{Type: "file_started", Device: string(device), File: file, Index: i + 1, Total: len(files)})

		fr := s.benchFile(ctx, device, file)
		pass.Files = append(pass.Files, fr)

		if fr.OK() {
			s.notify(ProgressEvent{
				Type: "file_finished", Device: string(device), File: file,
				Index: i + 1, Total: len(files), RTF: fr.Runs[0].RealTimeFactor,
			})
		} else {
			s.notify(ProgressEvent{
				Type: "file_failed", Device: string(device), File: file,
				Index: i + 1, Total: len(files), Error: fr.Error,
			})
		}
	}

	s.notify(ProgressEvent{Type: "pass_finished", Device: string(device), Total: len(files)})
	return pass
}

// benchFile выполняет все замеры одного файла на одном устройстве
func (s *BenchmarkService) benchFile(ctx context.Context, device ai.Device, file string) bench.FileResult {
	fr := bench.FileResult{Path: file}
	if info, err := os.Stat(file); err == nil {
		fr.SizeBytes = info.Size()
	}

	for run := 0; run < s.repeats(); run++ {
		result, err := s.runOnce(ctx, device, file)
		if err != nil {
			fr.Error = err.Error()
			var exhausted *ai.AllDevicesExhaustedError
			if errors.As(err, &exhausted) {
				fr.Attempts = len(exhausted.Attempts)
			}
			return fr
		}
		fr.AudioSeconds = result.AudioDuration
		fr.Attempts = len(result.Attempts)
		fr.Runs = append(fr.Runs, bench.RunMetrics{
			ProcessingSeconds: result.ProcessingTime,
			RealTimeFactor:    result.RealTimeFactor,
			SegmentsDecoded:   len(result.Segments),
		})
	}
	return fr
}

// runOnce один замер: порядок из единственного устройства, чтобы не
// смешивать тайминги разных устройств внутри одного прохода
func (s *BenchmarkService) runOnce(ctx context.Context, device ai.Device, file string) (*ai.Result, error) {
	return s.Runner.Run(ctx, ai.Request{
		AudioPath:    file,
		LanguageHint: s.Language,
		DeviceOrder:  []ai.Device{device},
		Profile:      s.Profile,
	})
}

func (s *BenchmarkService) repeats() int {
	if s.Repeats <= 0 {
		return 1
	}
	return s.Repeats
}

func (s *BenchmarkService) notify(event ProgressEvent) {
	if s.OnProgress != nil {
		s.OnProgress(event)
	}
}

// ListAudioFiles возвращает поддерживаемые аудио файлы директории,
// отсортированные по размеру (прогрессивное тестирование: короткие первыми)
func ListAudioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio directory: %w", err)
	}

	type sized struct {
		path string
		size int64
	}
	var found []sized
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !audio.IsSupported(path) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, sized{path: path, size: info.Size()})
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("no supported audio files in %s", dir)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].size < found[j].size })

	files := make([]string, len(found))
	for i, f := range found {
		files[i] = f.path
	}
	return files, nil
}
