package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"whisperbench/ai"
	"whisperbench/internal/bench"
	"whisperbench/internal/config"
	"whisperbench/internal/service"
	"whisperbench/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server websocket сервер статуса: отдаёт состояние моделей и устройств,
// запускает транскрипции и прогоны, транслирует их ход всем клиентам.
type Server struct {
	Config    *config.Config
	ModelMgr  *models.Manager
	Runner    *ai.Runner
	Inventory *ai.SystemInventory
	Bench     *service.BenchmarkService

	clients map[*websocket.Conn]bool
	mu      sync.Mutex
}

func NewServer(
	cfg *config.Config,
	modMgr *models.Manager,
	runner *ai.Runner,
	inv *ai.SystemInventory,
	benchSvc *service.BenchmarkService,
) *Server {
	s := &Server{
		Config:    cfg,
		ModelMgr:  modMgr,
		Runner:    runner,
		Inventory: inv,
		Bench:     benchSvc,
		clients:   make(map[*websocket.Conn]bool),
	}
	s.setupCallbacks()
	return s
}

func (s *Server) Start() {
	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/api/reports/", s.handleReportsAPI)

	log.Printf("Backend listening on :%s", s.Config.Port)
	if err := http.ListenAndServe(":"+s.Config.Port, nil); err != nil {
		log.Fatal("ListenAndServe:", err)
	}
}

func (s *Server) setupCallbacks() {
	// Прогресс загрузки моделей
	s.ModelMgr.SetProgressCallback(func(modelID string, progress float64, status models.ModelStatus, err error) {
		errStr := ""
		if err != nil {
			errStr = err.Error()
		}
		s.broadcast(Message{
			Type:     "model_progress",
			ModelID:  modelID,
			Progress: progress,
			Data:     string(status),
			Error:    errStr,
		})
	})

	// Ход прогона
	if s.Bench != nil {
		s.Bench.OnProgress = func(event service.ProgressEvent) {
			ev := event
			s.broadcast(Message{Type: "bench_progress", Event: &ev})
		}
	}
}

func (s *Server) broadcast(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.clients) == 0 {
		return
	}

	// WriteJSON сам по себе не потокобезопасен, глобальный lock
	// сериализует записи во все соединения.
	for conn := range s.clients {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("Write error: %v", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade:", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			log.Println("Read:", err)
			break
		}
		s.processMessage(conn, msg)
	}
}

func (s *Server) processMessage(conn *websocket.Conn, msg Message) {
	switch msg.Type {
	case "get_devices":
		conn.WriteJSON(Message{Type: "devices", Devices: s.deviceList()})

	case "get_models":
		conn.WriteJSON(Message{Type: "models_list", Models: s.ModelMgr.States()})

	case "download_model":
		if msg.Profile == "" {
			conn.WriteJSON(Message{Type: "error", Data: "profile is required"})
			return
		}
		precision := msg.Precision
		if precision == "" {
			precision = string(models.PrecisionFloat)
		}
		conn.WriteJSON(Message{Type: "download_started", ModelID: msg.Profile})
		go func() {
			if err := s.ModelMgr.Download(context.Background(), msg.Profile, precision); err != nil {
				log.Printf("Download of %s (%s) failed: %v", msg.Profile, precision, err)
			}
		}()

	case "transcribe":
		if msg.Path == "" {
			conn.WriteJSON(Message{Type: "error", Data: "path is required"})
			return
		}
		order, err := s.deviceOrder(msg.Device)
		if err != nil {
			conn.WriteJSON(Message{Type: "error", Data: err.Error()})
			return
		}
		req := ai.Request{
			AudioPath:    msg.Path,
			LanguageHint: s.languageFor(msg.Language),
			DeviceOrder:  order,
			Profile:      s.profileFor(msg.Profile),
		}
		conn.WriteJSON(Message{Type: "transcription_started", Path: msg.Path})
		go func() {
			result, err := s.Runner.Run(context.Background(), req)
			if err != nil {
				log.Printf("Transcription of %s failed: %v", msg.Path, err)
				s.broadcast(Message{Type: "transcription_failed", Path: msg.Path, Error: err.Error()})
				return
			}
			s.broadcast(Message{Type: "transcription_completed", Path: msg.Path, Result: result})
		}()

	case "start_benchmark":
		if s.Bench == nil {
			conn.WriteJSON(Message{Type: "error", Data: "benchmark service not available"})
			return
		}
		dir := msg.Dir
		if dir == "" {
			conn.WriteJSON(Message{Type: "error", Data: "dir is required"})
			return
		}
		files, err := service.ListAudioFiles(dir)
		if err != nil {
			conn.WriteJSON(Message{Type: "error", Data: err.Error()})
			return
		}
		if len(files) == 0 {
			conn.WriteJSON(Message{Type: "error", Data: "no audio files in " + dir})
			return
		}
		order, err := s.deviceOrder(msg.Device)
		if err != nil {
			conn.WriteJSON(Message{Type: "error", Data: err.Error()})
			return
		}
		label := msg.Label
		if label == "" {
			label = s.Config.Label
		}
		conn.WriteJSON(Message{Type: "benchmark_started", Dir: dir})
		go func() {
			system := bench.CollectSystemInfo(s.gpuName())
			report, err := s.Bench.RunComparison(context.Background(), order, files, label, system)
			if err != nil {
				log.Printf("Benchmark failed: %v", err)
				s.broadcast(Message{Type: "benchmark_failed", Error: err.Error()})
				return
			}
			outPath := s.Config.ReportPath(report.ID + ".json")
			if err := report.WriteJSON(outPath); err != nil {
				log.Printf("Failed to save report: %v", err)
			}
			s.broadcast(Message{Type: "benchmark_completed", Report: report, Path: outPath})
		}()

	case "get_reports":
		reports, err := s.listReports()
		if err != nil {
			conn.WriteJSON(Message{Type: "error", Data: err.Error()})
			return
		}
		conn.WriteJSON(Message{Type: "reports_list", Reports: reports})
	}
}

// handleReportsAPI отдаёт сохранённые отчёты по HTTP
func (s *Server) handleReportsAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	name := r.URL.Path[len("/api/reports/"):]
	if name == "" {
		reports, err := s.listReports()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reports)
		return
	}

	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.Config.ReportPath(name))
}

func (s *Server) listReports() ([]ReportInfo, error) {
	entries, err := os.ReadDir(s.Config.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var reports []ReportInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		reports = append(reports, ReportInfo{
			Name:      e.Name(),
			Path:      filepath.Join(s.Config.DataDir, e.Name()),
			SizeBytes: info.Size(),
		})
	}
	return reports, nil
}

func (s *Server) deviceList() []DeviceInfo {
	devices := []DeviceInfo{
		{Device: string(ai.DeviceCPU), Precision: string(ai.PrecisionInt8), Available: true},
	}
	gpu := DeviceInfo{
		Device:    string(ai.DeviceCUDA),
		Precision: string(ai.PrecisionFloat16),
		Available: s.Inventory.Available(ai.DeviceCUDA),
	}
	if gpus := s.Inventory.GPUs(); len(gpus) > 0 {
		gpu.GPUName = gpus[0].Name
		gpu.FreeBytes = gpus[0].FreeMemory
	}
	return append(devices, gpu)
}

func (s *Server) gpuName() string {
	if gpus := s.Inventory.GPUs(); len(gpus) > 0 {
		return gpus[0].Name
	}
	return ""
}

// deviceOrder строит порядок устройств из сообщения или конфигурации
func (s *Server) deviceOrder(preference string) ([]ai.Device, error) {
	if preference == "" {
		preference = s.Config.Device
	}
	return ai.DeviceOrderFor(preference)
}

func (s *Server) profileFor(profile string) ai.Profile {
	if profile == "" {
		profile = s.Config.Profile
	}
	return ai.Profile(profile)
}

func (s *Server) languageFor(language string) string {
	if language == "" {
		return s.Config.Language
	}
	return language
}
