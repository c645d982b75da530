package entity

// Role тип учётной записи на бэкенде
type Role string

const (
	RoleDoctor  Role = "doctor" // врач, может отправлять отчёты
	RolePatient Role = "user"   // пациент
)

// Session контекст пользователя, явно передаваемый в сервисы анализа.
type Session struct {
	UserID   int64  // ID пользователя на бэкенде
	Username string // логин
	Email    string
	Role     Role
	Token    string // bearer-токен для бэкенда
}

// IsClinician сообщает, может ли пользователь рассылать отчёты пациентам
func (s Session) IsClinician() bool {
	return s.Role == RoleDoctor
}
