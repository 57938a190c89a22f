package bench

import (
	"bufio"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// SystemInfo сведения о машине, на которой шёл замер
type SystemInfo struct {
	CPUModel string `json:"cpu_model"`
	NumCPU   int    `json:"cpu_num_logical"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	GPUName  string `json:"gpu_name,omitempty"`
}

// CollectSystemInfo собирает сведения о машине.
// gpuName передаёт вызывающий (из инвентаря устройств), чтобы
// не дублировать опрос nvidia-smi.
func CollectSystemInfo(gpuName string) SystemInfo {
	return SystemInfo{
		CPUModel: detectCPUModel(),
		NumCPU:   runtime.NumCPU(),
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		GPUName:  gpuName,
	}
}

// detectCPUModel определяет модель CPU по /proc/cpuinfo или sysctl
func detectCPUModel() string {
	if runtime.GOOS == "darwin" {
		out, err := exec.Command("sysctl", "-n", "machdep.cpu.brand_string").Output()
		if err == nil {
			return strings.TrimSpace(string(out))
		}
	}
	if runtime.GOOS == "linux" {
		f, err := os.Open("/proc/cpuinfo")
		if err == nil {
			defer f.Close()
			sc := bufio.NewScanner(f)
			for sc.Scan() {
				line := sc.Text()
				if strings.HasPrefix(line, "model name") {
					parts := strings.SplitN(line, ":", 2)
					if len(parts) == 2 {
						return strings.TrimSpace(parts[1])
					}
				}
			}
		}
	}
	return runtime.GOARCH + " CPU"
}
