package entity

// PredictionStatus этап классификации текущего изображения
type PredictionStatus string

const (
	StatusIdle       PredictionStatus = "idle"
	StatusPreviewing PredictionStatus = "previewing"
	StatusLoading    PredictionStatus = "loading"
	StatusSuccess    PredictionStatus = "success"
	StatusFailed     PredictionStatus = "failed"
)

// PredictionState единственное состояние классификации в сессии анализа.
// Поля заполняются в зависимости от Status:
// Loading: Token; Success: Result; Failed: Reason.
type PredictionState struct {
	Status  PredictionStatus
	Token   RequestToken
	Image   *SelectedImage
	Variant ModelVariant
	Result  *ClassificationResult
	Reason  string
}

// IsTerminal сообщает, завершён ли запрос
func (s PredictionState) IsTerminal() bool {
	return s.Status == StatusSuccess || s.Status == StatusFailed
}
