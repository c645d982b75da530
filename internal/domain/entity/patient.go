package entity

import (
	"sort"
	"strings"
)

// Patient пациент, привязанный к врачу
type Patient struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// FullName имя для отображения в списке
func (p Patient) FullName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

// PatientSelection множество выбранных получателей отчёта.
type PatientSelection struct {
	ids map[int64]struct{}
}

// NewPatientSelection создаёт пустой выбор
func NewPatientSelection() *PatientSelection {
	return &PatientSelection{ids: make(map[int64]struct{})}
}

// Toggle добавляет пациента или убирает, если он уже выбран.
// Возвращает true, если после вызова пациент выбран.
func (s *PatientSelection) Toggle(id int64) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has проверяет, выбран ли пациент
func (s *PatientSelection) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// Len количество выбранных пациентов
func (s *PatientSelection) Len() int {
	return len(s.ids)
}

// IDs выбранные ID по возрастанию
func (s *PatientSelection) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clear сбрасывает выбор
func (s *PatientSelection) Clear() {
	s.ids = make(map[int64]struct{})
}
