package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeEngine движок с заранее заданным ответом, считает вызовы Close
type fakeEngine struct {
	device       Device
	precision    PrecisionMode
	segments     []TranscriptSegment
	info         TranscriptInfo
	err          error
	panicMsg     string
	delay        time.Duration
	onTranscribe func()

	closed int
}

func (e *fakeEngine) Transcribe(ctx context.Context, samples []float32) ([]TranscriptSegment, TranscriptInfo, error) {
	if e.onTranscribe != nil {
		e.onTranscribe()
	}
	if e.panicMsg != "" {
		panic(e.panicMsg)
	}
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	if e.err != nil {
		return nil, TranscriptInfo{}, e.err
	}
	return e.segments, e.info, nil
}

func (e *fakeEngine) Device() Device               { return e.device }
func (e *fakeEngine) PrecisionMode() PrecisionMode { return e.precision }
func (e *fakeEngine) Close()                       { e.closed++ }

var _ TranscriptionEngine = (*fakeEngine)(nil)

// fakeFactory отдаёт движок или ошибку в зависимости от устройства
type fakeFactory struct {
	engines      map[Device]*fakeEngine
	constructErr map[Device]error
	panicOn      map[Device]string

	constructed []Device
}

func (f *fakeFactory) Construct(ctx context.Context, cfg EngineConfig) (TranscriptionEngine, error) {
	f.constructed = append(f.constructed, cfg.Device)
	if msg, ok := f.panicOn[cfg.Device]; ok {
		panic(msg)
	}
	if err, ok := f.constructErr[cfg.Device]; ok {
		return nil, err
	}
	eng, ok := f.engines[cfg.Device]
	if !ok {
		return nil, fmt.Errorf("no engine for %s", cfg.Device)
	}
	eng.device = cfg.Device
	eng.precision = cfg.Precision
	return eng, nil
}

var _ EngineFactory = (*fakeFactory)(nil)

// fakeLoader возвращает фиксированные семплы для любого пути
type fakeLoader struct {
	samples []float32
	err     error
}

func (l *fakeLoader) Load(path string) ([]float32, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.samples, nil
}

// fakeInventory управляемый инвентарь устройств
type fakeInventory struct {
	cudaPresent bool
	freeBytes   uint64
	freeKnown   bool
}

func (inv *fakeInventory) Available(device Device) bool {
	if device == DeviceCUDA {
		return inv.cudaPresent
	}
	return true
}

func (inv *fakeInventory) FreeMemory(device Device) (uint64, bool) {
	return inv.freeBytes, inv.freeKnown
}

func writeAudioStub(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.wav")
	if err := os.WriteFile(path, []byte("stub"), 0644); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// tenSeconds 10 секунд аудио при 16kHz
func tenSeconds() []float32 {
	return make([]float32, 160000)
}

func newTestRunner(t *testing.T, factory EngineFactory, loader AudioLoader) *Runner {
	t.Helper()
	r, err := NewRunner(RunnerConfig{Factory: factory, Loader: loader})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

// TestRunFirstDeviceSucceeds первый успех: cuda работает, cpu не трогаем
func TestRunFirstDeviceSucceeds(t *testing.T) {
	cudaEngine := &fakeEngine{
		segments: []TranscriptSegment{
			{Start: 0, End: 4, Text: " Hello "},
			{Start: 4, End: 8, Text: "world"},
		},
		info:  TranscriptInfo{Language: "en", LanguageConfidence: 1.0},
		delay: time.Millisecond,
	}
	factory := &fakeFactory{engines: map[Device]*fakeEngine{DeviceCUDA: cudaEngine}}
	runner := newTestRunner(t, factory, &fakeLoader{samples: tenSeconds()})

	result, err := runner.Run(context.Background(), Request{
		AudioPath:   writeAudioStub(t),
		DeviceOrder: []Device{DeviceCUDA, DeviceCPU},
		Profile:     ProfileBase,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.DeviceUsed != DeviceCUDA {
		t.Errorf("expected cuda, got %s", result.DeviceUsed)
	}
	if result.Text != "Hello world" {
		t.Errorf("expected %q, got %q", "Hello world", result.Text)
	}
	if len(result.Attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(result.Attempts))
	}
	if result.Attempts[0].Outcome != AttemptSuccess {
		t.Errorf("expected success outcome, got %s", result.Attempts[0].Outcome)
	}
	if result.Attempts[0].Precision != PrecisionFloat16 {
		t.Errorf("expected float16 on cuda, got %s", result.Attempts[0].Precision)
	}
	if len(factory.constructed) != 1 || factory.constructed[0] != DeviceCUDA {
		t.Errorf("expected single cuda construction, got %v", factory.constructed)
	}
	if cudaEngine.closed != 1 {
		t.Errorf("expected engine closed once, got %d", cudaEngine.closed)
	}
}

// TestRunFallbackToCPU отказ создания на cuda откатывает на cpu
func TestRunFallbackToCPU(t *testing.T) {
	cpuEngine := &fakeEngine{
		segments: []TranscriptSegment{{Start: 0, End: 10, Text: "fallback text"}},
		info:     TranscriptInfo{Language: "en"},
		delay:    time.Millisecond,
	}
	factory := &fakeFactory{
		engines:      map[Device]*fakeEngine{DeviceCPU: cpuEngine},
		constructErr: map[Device]error{DeviceCUDA: errors.New("CUDA driver version is insufficient")},
	}
	runner := newTestRunner(t, factory, &fakeLoader{samples: tenSeconds()})

	result, err := runner.Run(context.Background(), Request{
		AudioPath:   writeAudioStub(t),
		DeviceOrder: []Device{DeviceCUDA, DeviceCPU},
		Profile:     ProfileBase,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.DeviceUsed != DeviceCPU {
		t.Errorf("expected cpu, got %s", result.DeviceUsed)
	}
	if len(result.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(result.Attempts))
	}

	first := result.Attempts[0]
	if first.Device != DeviceCUDA || first.Outcome != AttemptFailure {
		t.Errorf("expected failed cuda attempt first, got %+v", first)
	}
	if first.FailureKind != FailureConstruction {
		t.Errorf("expected construction failure, got %s", first.FailureKind)
	}
	if first.FailureDetail == "" {
		t.Error("expected non-empty failure detail")
	}

	second := result.Attempts[1]
	if second.Device != DeviceCPU || second.Outcome != AttemptSuccess {
		t.Errorf("expected successful cpu attempt second, got %+v", second)
	}
	if second.Precision != PrecisionInt8 {
		t.Errorf("expected int8 on cpu, got %s", second.Precision)
	}
	if cpuEngine.closed != 1 {
		t.Errorf("expected cpu engine closed once, got %d", cpuEngine.closed)
	}
}

// TestRunAllDevicesExhausted все устройства отказали: типизированная ошибка
// с полной историей попыток в исходном порядке
func TestRunAllDevicesExhausted(t *testing.T) {
	factory := &fakeFactory{
		constructErr: map[Device]error{
			DeviceCUDA: errors.New("no CUDA device"),
			DeviceCPU:  errors.New("model files corrupted"),
		},
	}
	runner := newTestRunner(t, factory, &fakeLoader{samples: tenSeconds()})

	_, err := runner.Run(context.Background(), Request{
		AudioPath:   writeAudioStub(t),
		DeviceOrder: []Device{DeviceCUDA, DeviceCPU},
		Profile:     ProfileBase,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrAllDevicesExhausted) {
		t.Errorf("expected ErrAllDevicesExhausted, got %v", err)
	}

	var exhausted *AllDevicesExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *AllDevicesExhaustedError, got %T", err)
	}
	if len(exhausted.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(exhausted.Attempts))
	}
	if exhausted.Attempts[0].Device != DeviceCUDA || exhausted.Attempts[1].Device != DeviceCPU {
		t.Errorf("attempts out of order: %+v", exhausted.Attempts)
	}
	for i, a := range exhausted.Attempts {
		if a.Outcome != AttemptFailure {
			t.Errorf("attempt %d: expected failure, got %s", i, a.Outcome)
		}
		if a.FailureDetail == "" {
			t.Errorf("attempt %d: expected non-empty detail", i)
		}
	}
}

// TestRunInputNotFound отсутствующий вход: ошибка до любых попыток устройств
func TestRunInputNotFound(t *testing.T) {
	factory := &fakeFactory{}
	runner := newTestRunner(t, factory, &fakeLoader{samples: tenSeconds()})

	_, err := runner.Run(context.Background(), Request{
		AudioPath:   filepath.Join(t.TempDir(), "missing.wav"),
		DeviceOrder: []Device{DeviceCUDA, DeviceCPU},
		Profile:     ProfileBase,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrInputNotFound) {
		t.Errorf("expected ErrInputNotFound, got %v", err)
	}

	var notFound *InputNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *InputNotFoundError, got %T", err)
	}
	if notFound.Kind != InputMissing {
		t.Errorf("expected missing input kind, got %s", notFound.Kind)
	}
	if len(factory.constructed) != 0 {
		t.Errorf("expected no device attempts, constructed on %v", factory.constructed)
	}
}

// TestRunInputVariants невалидные входы: пустой путь, директория, пустой файл
func TestRunInputVariants(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.wav")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("write empty: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "directory", path: dir},
		{name: "empty file", path: empty},
	}

	runner := newTestRunner(t, &fakeFactory{}, &fakeLoader{samples: tenSeconds()})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Run(context.Background(), Request{
				AudioPath:   tt.path,
				DeviceOrder: []Device{DeviceCPU},
				Profile:     ProfileBase,
			})
			if !errors.Is(err, ErrInputNotFound) {
				t.Errorf("expected ErrInputNotFound, got %v", err)
			}
		})
	}
}

// TestRunDecodeFailure ошибка декодирования считается ошибкой входа,
// но с отличимым от отсутствующего файла видом
func TestRunDecodeFailure(t *testing.T) {
	runner := newTestRunner(t, &fakeFactory{}, &fakeLoader{err: errors.New("not a wav file")})

	_, err := runner.Run(context.Background(), Request{
		AudioPath:   writeAudioStub(t),
		DeviceOrder: []Device{DeviceCPU},
		Profile:     ProfileBase,
	})
	if !errors.Is(err, ErrInputNotFound) {
		t.Errorf("expected ErrInputNotFound, got %v", err)
	}

	var notFound *InputNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *InputNotFoundError, got %T", err)
	}
	if notFound.Kind != InputUndecodable {
		t.Errorf("expected undecodable input kind, got %s", notFound.Kind)
	}
}

// TestRunExecutionFailureFallsBack отказ транскрипции на cuda
// откатывает на cpu и освобождает движок cuda
func TestRunExecutionFailureFallsBack(t *testing.T) {
	cudaEngine := &fakeEngine{err: errors.New("CUDA out of memory")}
	cpuEngine := &fakeEngine{
		segments: []TranscriptSegment{{Start: 0, End: 10, Text: "ok"}},
		delay:    time.Millisecond,
	}
	factory := &fakeFactory{
		engines: map[Device]*fakeEngine{DeviceCUDA: cudaEngine, DeviceCPU: cpuEngine},
	}
	runner := newTestRunner(t, factory, &fakeLoader{samples: tenSeconds()})

	result, err := runner.Run(context.Background(), Request{
		AudioPath:   writeAudioStub(t),
		DeviceOrder: []Device{DeviceCUDA, DeviceCPU},
		Profile:     ProfileBase,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.DeviceUsed != DeviceCPU {
		t.Errorf("expected cpu, got %s", result.DeviceUsed)
	}
	if result.Attempts[0].FailureKind != FailureExecution {
		t.Errorf("expected execution failure, got %s", result.Attempts[0].FailureKind)
	}
	if cudaEngine.closed != 1 {
		t.Errorf("expected failed cuda engine closed, got %d", cudaEngine.closed)
	}
	if cpuEngine.closed != 1 {
		t.Errorf("expected cpu engine closed, got %d", cpuEngine.closed)
	}
}

// TestRunExecutionFailureExhausts единственное устройство: движок создался,
// но транскрипция упала - исчерпание с одной попыткой вида execution
func TestRunExecutionFailureExhausts(t *testing.T) {
	cudaEngine := &fakeEngine{err: errors.New("CUDA error: an illegal memory access was encountered")}
	factory := &fakeFactory{engines: map[Device]*fakeEngine{DeviceCUDA: cudaEngine}}
	runner := newTestRunner(t, factory, &fakeLoader{samples: tenSeconds()})

	_, err := runner.Run(context.Background(), Request{
		AudioPath:   writeAudioStub(t),
		DeviceOrder: []Device{DeviceCUDA},
		Profile:     ProfileBase,
	})
	if !errors.Is(err, ErrAllDevicesExhausted) {
		t.Fatalf("expected ErrAllDevicesExhausted, got %v", err)
	}

	var exhausted *AllDevicesExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *AllDevicesExhaustedError, got %T", err)
	}
	if len(exhausted.Attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(exhausted.Attempts))
	}

	attempt := exhausted.Attempts[0]
	if attempt.Device != DeviceCUDA || attempt.Outcome != AttemptFailure {
		t.Errorf("expected failed cuda attempt, got %+v", attempt)
	}
	if attempt.FailureKind != FailureExecution {
		t.Errorf("expected execution failure, got %s", attempt.FailureKind)
	}
	if attempt.FailureDetail == "" {
		t.Error("expected non-empty failure detail")
	}
	if cudaEngine.closed != 1 {
		t.Errorf("expected engine closed once, got %d", cudaEngine.closed)
	}
}

// TestRunCancelled отмена вызывающим возвращается как есть,
// не маскируется под отказ устройств
func TestRunCancelled(t *testing.T) {
	t.Run("before attempts", func(t *testing.T) {
		factory := &fakeFactory{}
		runner := newTestRunner(t, factory, &fakeLoader{samples: tenSeconds()})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := runner.Run(ctx, Request{
			AudioPath:   writeAudioStub(t),
			DeviceOrder: []Device{DeviceCUDA, DeviceCPU},
			Profile:     ProfileBase,
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if errors.Is(err, ErrAllDevicesExhausted) {
			t.Error("cancellation must not report exhaustion")
		}
		if len(factory.constructed) != 0 {
			t.Errorf("expected no constructions, got %v", factory.constructed)
		}
	})

	t.Run("during transcription", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cudaEngine := &fakeEngine{onTranscribe: cancel, err: context.Canceled}
		cpuEngine := &fakeEngine{segments: []TranscriptSegment{{Start: 0, End: 10, Text: "ok"}}}
		factory := &fakeFactory{
			engines: map[Device]*fakeEngine{DeviceCUDA: cudaEngine, DeviceCPU: cpuEngine},
		}
		runner := newTestRunner(t, factory, &fakeLoader{samples: tenSeconds()})

		_, err := runner.Run(ctx, Request{
			AudioPath:   writeAudioStub(t),
			DeviceOrder: []Device{DeviceCUDA, DeviceCPU},
			Profile:     ProfileBase,
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if cudaEngine.closed != 1 {
			t.Errorf("expected interrupted engine closed, got %d", cudaEngine.closed)
		}
		if cpuEngine.closed != 0 || len(factory.constructed) != 1 {
			t.Error("cancellation must not fall back to the next device")
		}
	})
}

// TestRunPanicsNormalized паники создания и транскрипции превращаются
// в обычные отказы попытки
func TestRunPanicsNormalized(t *testing.T) {
	t.Run("construction panic", func(t *testing.T) {
		cpuEngine := &fakeEngine{
			segments: []TranscriptSegment{{Start: 0, End: 10, Text: "ok"}},
			delay:    time.Millisecond,
		}
		factory := &fakeFactory{
			engines: map[Device]*fakeEngine{DeviceCPU: cpuEngine},
			panicOn: map[Device]string{DeviceCUDA: "cublas handle corrupt"},
		}
		runner := newTestRunner(t, factory, &fakeLoader{samples: tenSeconds()})

		result, err := runner.Run(context.Background(), Request{
			AudioPath:   writeAudioStub(t),
			DeviceOrder: []Device{DeviceCUDA, DeviceCPU},
			Profile:     ProfileBase,
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.Attempts[0].FailureKind != FailureConstruction {
			t.Errorf("expected construction failure, got %s", result.Attempts[0].FailureKind)
		}
	})

	t.Run("transcription panic", func(t *testing.T) {
		cudaEngine := &fakeEngine{panicMsg: "index out of range"}
		cpuEngine := &fakeEngine{
			segments: []TranscriptSegment{{Start: 0, End: 10, Text: "ok"}},
			delay:    time.Millisecond,
		}
		factory := &fakeFactory{
			engines: map[Device]*fakeEngine{DeviceCUDA: cudaEngine, DeviceCPU: cpuEngine},
		}
		runner := newTestRunner(t, factory, &fakeLoader{samples: tenSeconds()})

		result, err := runner.Run(context.Background(), Request{
			AudioPath:   writeAudioStub(t),
			DeviceOrder: []Device{DeviceCUDA, DeviceCPU},
			Profile:     ProfileBase,
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.Attempts[0].FailureKind != FailureExecution {
			t.Errorf("expected execution failure, got %s", result.Attempts[0].FailureKind)
		}
		if cudaEngine.closed != 1 {
			t.Errorf("expected panicking engine closed, got %d", cudaEngine.closed)
		}
	})
}

// TestRunInventoryPrefilter недоступный cuda пропускается без создания движка,
// но попытка остаётся в истории
func TestRunInventoryPrefilter(t *testing.T) {
	cpuEngine := &fakeEngine{
		segments: []TranscriptSegment{{Start: 0, End: 10, Text: "ok"}},
		delay:    time.Millisecond,
	}
	factory := &fakeFactory{engines: map[Device]*fakeEngine{DeviceCPU: cpuEngine}}
	runner, err := NewRunner(RunnerConfig{
		Factory:   factory,
		Loader:    &fakeLoader{samples: tenSeconds()},
		Inventory: &fakeInventory{cudaPresent: false},
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	result, err := runner.Run(context.Background(), Request{
		AudioPath:   writeAudioStub(t),
		DeviceOrder: []Device{DeviceCUDA, DeviceCPU},
		Profile:     ProfileBase,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(result.Attempts))
	}
	if result.Attempts[0].Outcome != AttemptFailure {
		t.Errorf("expected skipped cuda recorded as failure, got %s", result.Attempts[0].Outcome)
	}
	for _, d := range factory.constructed {
		if d == DeviceCUDA {
			t.Error("cuda engine must not be constructed when prefilter skips it")
		}
	}
}

// TestRunMetricsInvariants метрики: положительное время обработки,
// конечный неотрицательный real-time factor
func TestRunMetricsInvariants(t *testing.T) {
	engine := &fakeEngine{
		segments: []TranscriptSegment{{Start: 0, End: 10, Text: "fast"}},
	}
	factory := &fakeFactory{engines: map[Device]*fakeEngine{DeviceCPU: engine}}
	runner := newTestRunner(t, factory, &fakeLoader{samples: tenSeconds()})

	result, err := runner.Run(context.Background(), Request{
		AudioPath:   writeAudioStub(t),
		DeviceOrder: []Device{DeviceCPU},
		Profile:     ProfileBase,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.AudioDuration != 10.0 {
		t.Errorf("expected 10s audio, got %f", result.AudioDuration)
	}
	if result.ProcessingTime <= 0 {
		t.Errorf("expected positive processing time, got %f", result.ProcessingTime)
	}
	rtf := result.RealTimeFactor
	if rtf < 0 || rtf != rtf || rtf > 1e18 {
		t.Errorf("real-time factor out of range: %f", rtf)
	}
	if got := result.AudioDuration / result.ProcessingTime; got != rtf {
		t.Errorf("rtf inconsistent with duration/processing: %f vs %f", got, rtf)
	}
}

// TestRunBadDeviceOrder пустой и дублирующийся порядок отклоняются
func TestRunBadDeviceOrder(t *testing.T) {
	runner := newTestRunner(t, &fakeFactory{}, &fakeLoader{samples: tenSeconds()})
	path := writeAudioStub(t)

	tests := []struct {
		name  string
		order []Device
	}{
		{name: "empty", order: nil},
		{name: "duplicate", order: []Device{DeviceCPU, DeviceCPU}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Run(context.Background(), Request{
				AudioPath:   path,
				DeviceOrder: tt.order,
				Profile:     ProfileBase,
			})
			if !errors.Is(err, ErrBadDeviceOrder) {
				t.Errorf("expected ErrBadDeviceOrder, got %v", err)
			}
		})
	}
}

// TestRunUnknownProfile неизвестный профиль отклоняется до проверки входа
func TestRunUnknownProfile(t *testing.T) {
	runner := newTestRunner(t, &fakeFactory{}, &fakeLoader{samples: tenSeconds()})

	_, err := runner.Run(context.Background(), Request{
		AudioPath:   "does-not-matter.wav",
		DeviceOrder: []Device{DeviceCPU},
		Profile:     Profile("enormous"),
	})
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

// TestDeviceOrderFor разрешение предпочтения устройства в порядок попыток
func TestDeviceOrderFor(t *testing.T) {
	tests := []struct {
		preference string
		expected   []Device
		wantErr    bool
	}{
		{preference: "auto", expected: []Device{DeviceCUDA, DeviceCPU}},
		{preference: "", expected: []Device{DeviceCUDA, DeviceCPU}},
		{preference: "cuda", expected: []Device{DeviceCUDA}},
		{preference: "cpu", expected: []Device{DeviceCPU}},
		{preference: "tpu", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("pref_"+tt.preference, func(t *testing.T) {
			order, err := DeviceOrderFor(tt.preference)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DeviceOrderFor: %v", err)
			}
			if len(order) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, order)
			}
			for i := range order {
				if order[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, order)
				}
			}
		})
	}
}

// TestJoinSegmentText склейка текста сегментов
func TestJoinSegmentText(t *testing.T) {
	tests := []struct {
		name     string
		segments []TranscriptSegment
		expected string
	}{
		{name: "empty", segments: nil, expected: ""},
		{
			name:     "trims and joins",
			segments: []TranscriptSegment{{Text: "  Hello "}, {Text: "world  "}},
			expected: "Hello world",
		},
		{
			name:     "skips blank segments",
			segments: []TranscriptSegment{{Text: "a"}, {Text: "   "}, {Text: "b"}},
			expected: "a b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinSegmentText(tt.segments); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
