// Пакет rbac — определение роли сотрудника по группам IdP.
// Роли: clinician (запись: заведение файлов и переходы) и readonly
// (чтение реестра и отчётов). Итоговая роль — максимальная из совпавших групп.
package rbac

// Роли в порядке возрастания привилегий.
const (
	RoleReadonly  = "readonly"
	RoleClinician = "clinician"
)

// roleWeight — вес роли для сравнения.
// Чем выше вес, тем больше привилегий.
var roleWeight = map[string]int{
	RoleReadonly:  1,
	RoleClinician: 2,
}

// HighestRole возвращает максимальную роль из набора.
// Если набор пуст — возвращает пустую строку.
func HighestRole(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	highest := roles[0]
	for _, r := range roles[1:] {
		highest = maxRole(highest, r)
	}
	return highest
}

// maxRole возвращает роль с максимальными привилегиями из двух.
func maxRole(a, b string) string {
	wa := roleWeight[a]
	wb := roleWeight[b]
	if wa >= wb {
		return a
	}
	return b
}

// MapGroupsToRole определяет роль сотрудника на основе его групп IdP.
// Проверяет принадлежность к clinicianGroups и readonlyGroups.
// Возвращает максимальную роль из всех совпадений.
// Если ни одна группа не совпала — возвращает пустую строку.
func MapGroupsToRole(groups []string, clinicianGroups, readonlyGroups []string) string {
	clinicianSet := toSet(clinicianGroups)
	readonlySet := toSet(readonlyGroups)

	var roles []string
	for _, g := range groups {
		if clinicianSet[g] {
			roles = append(roles, RoleClinician)
		}
		if readonlySet[g] {
			roles = append(roles, RoleReadonly)
		}
	}

	return HighestRole(roles)
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role string) bool {
	_, ok := roleWeight[role]
	return ok
}

// toSet конвертирует срез строк в map для быстрого поиска.
func toSet(items []string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, item := range items {
		s[item] = true
	}
	return s
}
