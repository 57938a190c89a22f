// Package sampler извлекает представительную выборку аудио файлов из
// архива датасета (Common Voice и подобные) без полной распаковки.
package sampler

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Options параметры выборки
type Options struct {
	MaxFiles  int   // общий лимит файлов (по умолчанию 15)
	PerBucket int   // лимит на корзину размера (по умолчанию 5)
	Seed      int64 // сид для воспроизводимой выборки; 0 = случайный
}

func (o Options) maxFiles() int {
	if o.MaxFiles <= 0 {
		return 15
	}
	return o.MaxFiles
}

func (o Options) perBucket() int {
	if o.PerBucket <= 0 {
		return 5
	}
	return o.PerBucket
}

// SampledFile один извлечённый файл
type SampledFile struct {
	Filename     string `json:"filename"`      // имя в выходной директории
	OriginalName string `json:"original_name"` // путь внутри архива
	SizeBytes    int64  `json:"size_bytes"`
	Bucket       string `json:"bucket"` // small, medium, large
}

// Manifest итог выборки
type Manifest struct {
	Archive    string         `json:"archive"`
	TotalAudio int            `json:"total_audio_files"`
	Extracted  []SampledFile  `json:"extracted"`
	Buckets    map[string]int `json:"buckets"`
}

// audioMember кандидат внутри архива
type audioMember struct {
	name   string
	size   int64
	bucket string
}

// Extract делает выборку из архива (.tar.gz или .zip) в outDir.
// Размер файла служит прокси длительности: выборка берётся из трёх
// корзин по размеру, чтобы покрыть короткие, средние и длинные клипы.
func Extract(archivePath, outDir string, opts Options) (*Manifest, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	members, err := listAudioMembers(archivePath)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("no audio files found in %s", archivePath)
	}
	log.Printf("sampler: %d audio files in archive", len(members))

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	picked := smartSample(members, rand.New(rand.NewSource(seed)), opts)
	log.Printf("sampler: selected %d files (seed=%d)", len(picked), seed)

	extracted, err := extractMembers(archivePath, outDir, picked)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		Archive:    archivePath,
		TotalAudio: len(members),
		Extracted:  extracted,
		Buckets:    map[string]int{},
	}
	for _, f := range extracted {
		manifest.Buckets[f.Bucket]++
	}
	return manifest, nil
}

// WriteManifest сохраняет манифест выборки рядом с файлами
func (m *Manifest) WriteManifest(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// isAudioName проверяет расширение члена архива
func isAudioName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3", ".wav", ".ogg", ".flac":
		return true
	default:
		return false
	}
}

// smartSample выбирает файлы из трёх корзин по размеру.
// Корзины - трети отсортированного по размеру списка; из каждой берётся
// до perBucket случайных файлов, итог ограничен maxFiles.
func smartSample(members []audioMember, rng *rand.Rand, opts Options) []audioMember {
	sorted := make([]audioMember, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].size < sorted[j].size })

	third := len(sorted) / 3
	buckets := []struct {
		name  string
		items []audioMember
	}{
		{"small", sorted[:third]},
		{"medium", sorted[third : 2*third]},
		{"large", sorted[2*third:]},
	}

	if len(sorted) <= opts.maxFiles() {
		// Архив меньше лимита: берём всё, раскладывая по корзинам
		var all []audioMember
		for _, b := range buckets {
			for _, item := range b.items {
				item.bucket = b.name
				all = append(all, item)
			}
		}
		return all
	}

	var picked []audioMember
	for _, b := range buckets {
		n := opts.perBucket()
		if n > len(b.items) {
			n = len(b.items)
		}
		for _, idx := range rng.Perm(len(b.items))[:n] {
			item := b.items[idx]
			item.bucket = b.name
			picked = append(picked, item)
		}
	}
	if len(picked) > opts.maxFiles() {
		picked = picked[:opts.maxFiles()]
	}
	return picked
}

// listAudioMembers первый проход: собрать аудио члены архива
func listAudioMembers(archivePath string) ([]audioMember, error) {
	var members []audioMember
	err := walkArchive(archivePath, func(name string, size int64, _ io.Reader) (bool, error) {
		if isAudioName(name) {
			members = append(members, audioMember{name: name, size: size})
		}
		return false, nil
	})
	return members, err
}

// extractMembers второй проход: извлечь выбранные члены плоско в outDir
func extractMembers(archivePath, outDir string, picked []audioMember) ([]SampledFile, error) {
	want := make(map[string]audioMember, len(picked))
	for _, m := range picked {
		want[m.name] = m
	}

	var extracted []SampledFile
	err := walkArchive(archivePath, func(name string, size int64, r io.Reader) (bool, error) {
		m, ok := want[name]
		if !ok {
			return false, nil
		}
		idx := len(extracted) + 1
		outName := fmt.Sprintf("sample_%03d_%dkb%s", idx, size/1000, strings.ToLower(filepath.Ext(name)))
		outPath := filepath.Join(outDir, outName)

		out, err := os.Create(outPath)
		if err != nil {
			return false, fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		if _, err := io.Copy(out, r); err != nil {
			out.Close()
			os.Remove(outPath)
			return false, fmt.Errorf("failed to extract %s: %w", name, err)
		}
		out.Close()

		extracted = append(extracted, SampledFile{
			Filename:     outName,
			OriginalName: name,
			SizeBytes:    size,
			Bucket:       m.bucket,
		})
		return len(extracted) == len(picked), nil
	})
	return extracted, err
}

// walkFunc обрабатывает один член архива; done=true прерывает обход
type walkFunc func(name string, size int64, r io.Reader) (done bool, err error)

// walkArchive обходит члены .tar.gz или .zip архива
func walkArchive(archivePath string, fn walkFunc) error {
	lower := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz"):
		return walkTarGz(archivePath, fn)
	case strings.HasSuffix(lower, ".zip"):
		return walkZip(archivePath, fn)
	default:
		return fmt.Errorf("unsupported archive format: %s", archivePath)
	}
}

func walkTarGz(archivePath string, fn walkFunc) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		done, err := fn(hdr.Name, hdr.Size, tr)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func walkZip(archivePath string, fn walkFunc) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		r, err := zf.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", zf.Name, err)
		}
		done, err := fn(zf.Name, int64(zf.UncompressedSize64), r)
		r.Close()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return nil
}
