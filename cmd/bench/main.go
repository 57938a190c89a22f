// Сравнительный прогон транскрипции по устройствам.
//
// Запуск: go run ./cmd/bench -dir testdata/audio -model base -repeats 3
//
// Для каждого устройства из порядка выполняется отдельный проход по всем
// файлам, итог сохраняется в JSON отчёт. Сводка печатается в stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"whisperbench/ai"
	"whisperbench/audio"
	"whisperbench/internal/bench"
	"whisperbench/internal/service"
	"whisperbench/models"
)

func main() {
	dir := flag.String("dir", "", "директория с аудио файлами")
	profile := flag.String("model", "base", "размер модели: tiny, base, small, medium, large")
	language := flag.String("lang", "", "код языка, пусто = автоопределение")
	device := flag.String("device", "auto", "устройства прогона: auto (cuda и cpu), cuda, cpu")
	repeats := flag.Int("repeats", 3, "замеров на файл")
	warmup := flag.Bool("warmup", true, "неизмеряемый прогон перед каждым проходом")
	label := flag.String("label", "", "метка машины/конфигурации для отчёта")
	outPath := flag.String("out", "", "файл JSON отчёта, пусто = stdout")
	modelsDir := flag.String("models-dir", envOr("WHISPERBENCH_MODELS_DIR", "data/models"), "директория файлов моделей")
	threads := flag.Int("threads", 0, "потоки декодера, 0 = по числу ядер")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "Error: -dir is required")
		flag.Usage()
		os.Exit(1)
	}

	files, err := service.ListAudioFiles(*dir)
	if err != nil {
		fatal(err)
	}
	if len(files) == 0 {
		fatal(fmt.Errorf("no audio files in %s", *dir))
	}
	log.Printf("Found %d audio files in %s", len(files), *dir)

	devices, err := ai.DeviceOrderFor(*device)
	if err != nil {
		fatal(err)
	}

	modelMgr, err := models.NewManager(*modelsDir)
	if err != nil {
		fatal(err)
	}

	inventory := ai.NewSystemInventory()
	runner, err := ai.NewRunner(ai.RunnerConfig{
		Factory:   &ai.WhisperFactory{Models: modelMgr},
		Loader:    &audio.Loader{},
		Inventory: inventory,
		Threads:   *threads,
	})
	if err != nil {
		fatal(err)
	}

	svc := service.NewBenchmarkService(runner, ai.Profile(*profile), *language)
	svc.Repeats = *repeats
	svc.Warmup = *warmup
	svc.OnProgress = logProgress

	gpuName := ""
	if gpus := inventory.GPUs(); len(gpus) > 0 {
		gpuName = gpus[0].Name
	}
	system := bench.CollectSystemInfo(gpuName)

	report, err := svc.RunComparison(context.Background(), devices, files, *label, system)
	if err != nil {
		fatal(err)
	}

	if err := report.WriteJSON(*outPath); err != nil {
		fatal(err)
	}
	if *outPath != "" {
		log.Printf("Report saved to: %s", *outPath)
	}

	fmt.Fprintln(os.Stderr, report.RenderMarkdown())
}

func logProgress(event service.ProgressEvent) {
	switch event.Type {
	case "pass_started":
		log.Printf("Pass started: device=%s", event.Device)
	case "file_finished":
		log.Printf("  [%d/%d] %s: %.1fx real-time", event.Index, event.Total, event.File, event.RTF)
	case "file_failed":
		log.Printf("  [%d/%d] %s: FAILED: %s", event.Index, event.Total, event.File, event.Error)
	case "pass_finished":
		log.Printf("Pass finished: device=%s", event.Device)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
