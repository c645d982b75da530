package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото мазка
	StateProcessing    UserState = "processing"     // Классификация изображения
	StateDispatching   UserState = "dispatching"    // Выбор пациентов для отчёта
)

// User представляет пользователя бота
type User struct {
	ID      int64        // Telegram User ID
	ChatID  int64        // Telegram Chat ID
	State   UserState    // Текущее состояние пользователя
	Variant ModelVariant // Выбранная модель, пусто если пользователь не выбирал
	Session *Session     // Сессия бэкенда, nil если не выполнен вход
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// SignIn привязывает сессию бэкенда к пользователю
func (u *User) SignIn(session Session) {
	u.Session = &session
}

// SignOut сбрасывает сессию
func (u *User) SignOut() {
	u.Session = nil
	u.State = StateMainMenu
}

// IsAuthenticated сообщает, выполнен ли вход
func (u *User) IsAuthenticated() bool {
	return u.Session != nil && u.Session.Token != ""
}
