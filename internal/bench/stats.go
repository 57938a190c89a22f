package bench

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// summarize считает агрегаты одного прохода по устройству
func summarize(files []FileResult) PassSummary {
	var s PassSummary
	var procTimes []float64

	for _, fr := range files {
		if !fr.OK() {
			s.FilesFailed++
			continue
		}
		s.FilesOK++
		s.TotalAudioSeconds += fr.AudioSeconds
		for _, run := range fr.Runs {
			procTimes = append(procTimes, run.ProcessingSeconds)
			s.TotalWallSeconds += run.ProcessingSeconds
		}
	}

	rtfs := sortedRTFs(files)
	if len(rtfs) == 0 {
		return s
	}

	s.MeanProcessingSeconds = stat.Mean(procTimes, nil)
	if len(procTimes) > 1 {
		s.StdDevProcessingSeconds = stat.StdDev(procTimes, nil)
	}
	s.MeanRealTimeFactor = stat.Mean(rtfs, nil)
	s.MedianRealTimeFactor = stat.Quantile(0.5, stat.Empirical, rtfs, nil)
	s.MinRealTimeFactor = rtfs[0]
	s.MaxRealTimeFactor = rtfs[len(rtfs)-1]

	// Сколько секунд стены нужно на час аудио при среднем RTF
	if s.MeanRealTimeFactor > 0 {
		s.WallSecondsPerAudioHour = 3600.0 / s.MeanRealTimeFactor
	}
	return s
}

// MedianOf вспомогательная медиана для произвольного среза
func MedianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
