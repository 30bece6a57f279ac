package models

type Role string // Роль аутентифицированного пользователя

const (
	RoleAdmin    Role = "admin"    // Администратор площадки
	RoleClient   Role = "client"   // Клиент, размещающий запросы
	RoleSupplier Role = "supplier" // Поставщик, подающий предложения
)

// Actor - личность пользователя, установленная внешним слоем аутентификации.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin сообщает, является ли пользователь администратором.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ValidRole проверяет, что роль входит в список известных.
func ValidRole(role Role) bool {
	return role == RoleAdmin || role == RoleClient || role == RoleSupplier
}
