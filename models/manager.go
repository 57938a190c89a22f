package models

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// WhisperPaths файлы модели, выбранные под конкретную точность
type WhisperPaths struct {
	Encoder string
	Decoder string
	Tokens  string
}

// ProgressCallback функция обратного вызова для прогресса загрузки
type ProgressCallback func(modelID string, progress float64, status ModelStatus, err error)

// Manager менеджер локальных файлов моделей.
// Файлы каждого профиля лежат в своей поддиректории modelsDir/<id>/.
type Manager struct {
	modelsDir  string
	mu         sync.RWMutex
	onProgress ProgressCallback
}

// NewManager создаёт новый менеджер моделей
func NewManager(modelsDir string) (*Manager, error) {
	if err := os.MkdirAll(modelsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create models directory: %w", err)
	}
	return &Manager{modelsDir: modelsDir}, nil
}

// SetProgressCallback устанавливает callback для прогресса
func (m *Manager) SetProgressCallback(cb ProgressCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProgress = cb
}

// GetModelsDir возвращает путь к директории моделей
func (m *Manager) GetModelsDir() string {
	return m.modelsDir
}

// ModelDir возвращает директорию файлов профиля
func (m *Manager) ModelDir(id string) string {
	return filepath.Join(m.modelsDir, id)
}

// filesFor возвращает имена файлов и их URL для точности
func filesFor(info *ModelInfo, precision Precision) map[string]string {
	switch precision {
	case PrecisionInt8:
		return map[string]string{
			FileEncoderInt8: info.EncoderInt8URL,
			FileDecoderInt8: info.DecoderInt8URL,
			FileTokens:      info.TokensURL,
		}
	default:
		return map[string]string{
			FileEncoder: info.EncoderURL,
			FileDecoder: info.DecoderURL,
			FileTokens:  info.TokensURL,
		}
	}
}

// WhisperPathsFor возвращает пути файлов профиля для точности.
// Ошибка, если профиль неизвестен или какой-то файл не скачан.
func (m *Manager) WhisperPathsFor(profile, precision string) (WhisperPaths, error) {
	info := GetModelByProfile(profile)
	if info == nil {
		return WhisperPaths{}, fmt.Errorf("unknown model profile: %s", profile)
	}

	dir := m.ModelDir(info.ID)
	encoder := filepath.Join(dir, FileEncoder)
	decoder := filepath.Join(dir, FileDecoder)
	if Precision(precision) == PrecisionInt8 {
		encoder = filepath.Join(dir, FileEncoderInt8)
		decoder = filepath.Join(dir, FileDecoderInt8)
	}
	tokens := filepath.Join(dir, FileTokens)

	for _, path := range []string{encoder, decoder, tokens} {
		if _, err := os.Stat(path); err != nil {
			return WhisperPaths{}, fmt.Errorf("model %s (%s) is not downloaded: missing %s",
				info.ID, precision, filepath.Base(path))
		}
	}

	return WhisperPaths{Encoder: encoder, Decoder: decoder, Tokens: tokens}, nil
}

// IsDownloaded проверяет, что все файлы профиля для точности на месте
func (m *Manager) IsDownloaded(profile, precision string) bool {
	_, err := m.WhisperPathsFor(profile, precision)
	return err == nil
}

// Download скачивает недостающие файлы профиля для точности
func (m *Manager) Download(ctx context.Context, profile, precision string) error {
	info := GetModelByProfile(profile)
	if info == nil {
		return fmt.Errorf("unknown model profile: %s", profile)
	}

	dir := m.ModelDir(info.ID)
	files := filesFor(info, Precision(precision))

	m.notify(info.ID, 0, ModelStatusDownloading, nil)

	done := 0
	for name, url := range files {
		destPath := filepath.Join(dir, name)
		if _, err := os.Stat(destPath); err == nil {
			done++
			continue
		}

		log.Printf("Manager: downloading %s -> %s", url, destPath)
		base := float64(done) / float64(len(files)) * 100
		share := 100.0 / float64(len(files))
		err := DownloadFile(ctx, url, destPath, 0, func(p float64) {
			m.notify(info.ID, base+p*share/100, ModelStatusDownloading, nil)
		})
		if err != nil {
			m.notify(info.ID, base, ModelStatusError, err)
			return fmt.Errorf("failed to download %s: %w", name, err)
		}
		done++
	}

	m.notify(info.ID, 100, ModelStatusDownloaded, nil)
	log.Printf("Manager: model %s (%s) ready in %s", info.ID, precision, dir)
	return nil
}

// States возвращает состояние всех моделей реестра.
// Модель считается скачанной, если доступна хотя бы одна точность.
func (m *Manager) States() []ModelState {
	states := make([]ModelState, 0, len(Registry))
	for i := range Registry {
		info := Registry[i]
		state := ModelState{
			ModelInfo: info,
			Status:    ModelStatusNotDownloaded,
			Path:      m.ModelDir(info.ID),
		}
		if m.IsDownloaded(info.Profile, string(PrecisionInt8)) ||
			m.IsDownloaded(info.Profile, string(PrecisionFloat)) {
			state.Status = ModelStatusDownloaded
		}
		states = append(states, state)
	}
	return states
}

func (m *Manager) notify(modelID string, progress float64, status ModelStatus, err error) {
	m.mu.RLock()
	cb := m.onProgress
	m.mu.RUnlock()
	if cb != nil {
		cb(modelID, progress, status, err)
	}
}
