package entity

// ReportDispatch один отчёт для всех выбранных пациентов.
// Рассылку по получателям выполняет сервер.
type ReportDispatch struct {
	Image      *SelectedImage
	Class      string
	Confidence float64
	PatientIDs []int64
}

// NewReportDispatch собирает отчёт. Пустой выбор отклоняется с ErrValidation.
func NewReportDispatch(image *SelectedImage, result ClassificationResult, selection *PatientSelection) (*ReportDispatch, error) {
	if selection == nil || selection.Len() == 0 {
		return nil, ErrValidation
	}
	if image == nil {
		return nil, ErrNoResult
	}
	return &ReportDispatch{
		Image:      image,
		Class:      result.Class,
		Confidence: result.Confidence,
		PatientIDs: selection.IDs(),
	}, nil
}
