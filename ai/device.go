// Package ai предоставляет SystemInventory - инвентарь вычислительных устройств
package ai

import (
	"log"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// DeviceInventory инвентарь устройств для префильтра попыток.
// Только подсказка: отрицательный ответ избавляет от заведомо безнадёжной
// попытки, но отказ создания движка обрабатывается независимо от него.
type DeviceInventory interface {
	// Available сообщает, присутствует ли класс устройства в системе
	Available(device Device) bool

	// FreeMemory возвращает свободную память устройства в байтах.
	// ok=false если память для этого класса не определяется.
	FreeMemory(device Device) (bytes uint64, ok bool)
}

// GPUInfo сведения об одном ускорителе
type GPUInfo struct {
	Name        string // имя устройства
	TotalMemory uint64 // байты
	FreeMemory  uint64 // байты
}

// SystemInventory определяет устройства через nvidia-smi.
// Результат кэшируется: инвентарь опрашивается один раз на процесс.
type SystemInventory struct {
	once sync.Once
	gpus []GPUInfo
}

var _ DeviceInventory = (*SystemInventory)(nil)

// NewSystemInventory создаёт системный инвентарь
func NewSystemInventory() *SystemInventory {
	return &SystemInventory{}
}

// Available проверяет наличие класса устройства
func (inv *SystemInventory) Available(device Device) bool {
	switch device {
	case DeviceCPU:
		return true
	case DeviceCUDA:
		return len(inv.detect()) > 0
	default:
		return false
	}
}

// FreeMemory возвращает свободную память первого ускорителя
func (inv *SystemInventory) FreeMemory(device Device) (uint64, bool) {
	if device != DeviceCUDA {
		return 0, false
	}
	gpus := inv.detect()
	if len(gpus) == 0 {
		return 0, false
	}
	return gpus[0].FreeMemory, true
}

// GPUs возвращает список обнаруженных ускорителей
func (inv *SystemInventory) GPUs() []GPUInfo {
	return inv.detect()
}

func (inv *SystemInventory) detect() []GPUInfo {
	inv.once.Do(func() {
		inv.gpus = queryNvidiaSMI()
		if len(inv.gpus) > 0 {
			for i, gpu := range inv.gpus {
				log.Printf("SystemInventory: GPU %d: %s (%.1f GB free of %.1f GB)",
					i, gpu.Name,
					float64(gpu.FreeMemory)/(1024*1024*1024),
					float64(gpu.TotalMemory)/(1024*1024*1024))
			}
		} else {
			log.Printf("SystemInventory: no CUDA devices detected")
		}
	})
	return inv.gpus
}

// queryNvidiaSMI опрашивает nvidia-smi, как это делают GPU бенчмарки.
// Отсутствие утилиты или её отказ означает отсутствие CUDA устройств.
func queryNvidiaSMI() []GPUInfo {
	path, err := exec.LookPath("nvidia-smi")
	if err != nil {
		return nil
	}
	out, err := exec.Command(path,
		"--query-gpu=name,memory.total,memory.free",
		"--format=csv,noheader,nounits").Output()
	if err != nil {
		return nil
	}
	return parseNvidiaSMI(string(out))
}

// parseNvidiaSMI разбирает CSV вывод nvidia-smi (значения памяти в MiB)
func parseNvidiaSMI(out string) []GPUInfo {
	var gpus []GPUInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		totalMiB, err1 := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		freeMiB, err2 := strconv.ParseUint(strings.TrimSpace(parts[2]), 10, 64)
		if name == "" || err1 != nil || err2 != nil {
			continue
		}
		gpus = append(gpus, GPUInfo{
			Name:        name,
			TotalMemory: totalMiB * 1024 * 1024,
			FreeMemory:  freeMiB * 1024 * 1024,
		})
	}
	return gpus
}
