// Выборка тестовых аудио файлов из архива.
//
// Запуск: go run ./cmd/sampleaudio -archive dataset.tar.gz -out testdata/audio
//
// Из архива берётся стратифицированная по размеру выборка: файлы делятся
// на три корзины и из каждой случайно извлекается несколько штук.
// Рядом с файлами пишется manifest.json с описанием выборки.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"whisperbench/sampler"
)

func main() {
	archive := flag.String("archive", "", "путь к архиву (tar.gz или zip)")
	outDir := flag.String("out", "testdata/audio", "выходная директория")
	maxFiles := flag.Int("max", 15, "общий лимит файлов")
	perBucket := flag.Int("per-bucket", 5, "лимит файлов на корзину размера")
	seed := flag.Int64("seed", 0, "сид выборки, 0 = случайный")
	flag.Parse()

	if *archive == "" {
		fmt.Fprintln(os.Stderr, "Error: -archive is required")
		flag.Usage()
		os.Exit(1)
	}

	manifest, err := sampler.Extract(*archive, *outDir, sampler.Options{
		MaxFiles:  *maxFiles,
		PerBucket: *perBucket,
		Seed:      *seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	manifestPath := filepath.Join(*outDir, "manifest.json")
	if err := manifest.WriteManifest(manifestPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log.Printf("Extracted %d of %d audio files to %s", len(manifest.Extracted), manifest.TotalAudio, *outDir)
	for _, f := range manifest.Extracted {
		log.Printf("  %s (%s, %d KB) <- %s", f.Filename, f.Bucket, f.SizeBytes/1024, f.OriginalName)
	}
	log.Printf("Manifest: %s", manifestPath)
}
