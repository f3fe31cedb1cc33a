package entity

// OperatorState состояние оператора в боте
type OperatorState string

const (
	OperatorIdle     OperatorState = "idle"     // отчёты не отправляются
	OperatorWatching OperatorState = "watching" // подписан на отчёты о прогоне
)

// Operator оператор, управляющий наведением через бота
type Operator struct {
	ID     int64         // Telegram User ID
	ChatID int64         // Telegram Chat ID
	State  OperatorState // текущее состояние
}

// NewOperator создаёт оператора в начальном состоянии
func NewOperator(userID, chatID int64) *Operator {
	return &Operator{
		ID:     userID,
		ChatID: chatID,
		State:  OperatorIdle,
	}
}

// SetState обновляет состояние оператора
func (o *Operator) SetState(state OperatorState) {
	o.State = state
}

// Watching подписан ли оператор на отчёты
func (o *Operator) Watching() bool {
	return o.State == OperatorWatching
}
