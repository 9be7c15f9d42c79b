package waittime

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// modelFile JSON-экспорт обученной линейной модели.
// Оффлайн-обучение (черный ящик для сервиса) выгружает коэффициенты
// по контракту фич: hour, weekday, service_avg_minutes, queue_length,
// counters_active, priority.
type modelFile struct {
	Intercept    float64 `json:"intercept"`
	Coefficients struct {
		Hour              float64 `json:"hour"`
		Weekday           float64 `json:"weekday"`
		ServiceAvgMinutes float64 `json:"service_avg_minutes"`
		QueueLength       float64 `json:"queue_length"`
		CountersActive    float64 `json:"counters_active"`
		Priority          float64 `json:"priority"`
	} `json:"coefficients"`
}

// FileScorer scorer поверх файла модели.
//
// Модель загружается лениво при первом обращении и переиспользуется
// на весь жизненный цикл процесса (immutable, без перезагрузки).
// Ошибка загрузки фиксируется один раз и далее возвращается без
// повторных обращений к диску.
type FileScorer struct {
	path string

	once    sync.Once
	model   *modelFile
	loadErr error
}

// NewFileScorer создает scorer для файла модели по пути path
func NewFileScorer(path string) *FileScorer {
	return &FileScorer{path: path}
}

// Score вычисляет сырую оценку ожидания в минутах
func (s *FileScorer) Score(_ context.Context, f Features) (float64, error) {
	s.once.Do(s.load)
	if s.loadErr != nil {
		return 0, s.loadErr
	}

	c := s.model.Coefficients
	raw := s.model.Intercept +
		c.Hour*float64(f.Hour) +
		c.Weekday*float64(f.Weekday) +
		c.ServiceAvgMinutes*float64(f.ServiceAvgMinutes) +
		c.QueueLength*float64(f.QueueLength) +
		c.CountersActive*float64(f.CountersActive) +
		c.Priority*float64(f.PriorityLevel)

	return raw, nil
}

func (s *FileScorer) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.loadErr = fmt.Errorf("waittime: failed to read model file %s: %w", s.path, err)
		return
	}

	var m modelFile
	if err := json.Unmarshal(data, &m); err != nil {
		s.loadErr = fmt.Errorf("waittime: failed to parse model file %s: %w", s.path, err)
		return
	}

	s.model = &m
}
