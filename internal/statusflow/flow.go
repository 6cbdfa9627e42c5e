package statusflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// SettingKey — ключ system_settings, где хранится пользовательский граф.
const SettingKey = "os_custom_workflow"

// Flow — список смежности разрешённых переходов и подписи статусов.
type Flow struct {
	Labels map[Status]string   `json:"labels"`
	Next   map[Status][]Status `json:"flow"`
}

var defaultLabels = map[Status]string{
	Aberta:              "Aberta",
	EmDiagnostico:       "Em Diagnóstico",
	AguardandoAprovacao: "Aguardando Aprovação",
	AguardandoPeca:      "Aguardando Peça",
	EmReparo:            "Em Bancada / Realizando Reparo",
	Testes:              "Testes",
	Finalizada:          "Finalizada",
	Entregue:            "Entregue",
	Cancelada:           "Cancelada",
}

var defaultNext = map[Status][]Status{
	Aberta:              {EmDiagnostico, Cancelada},
	EmDiagnostico:       {AguardandoAprovacao, AguardandoPeca, Cancelada},
	AguardandoAprovacao: {AguardandoPeca, EmReparo, Cancelada},
	AguardandoPeca:      {EmReparo, AguardandoAprovacao},
	EmReparo:            {Testes, AguardandoPeca},
	Testes:              {Finalizada, EmReparo},
	Finalizada:          {Entregue, EmReparo},
	Entregue:            {},
	Cancelada:           {},
}

// Default возвращает копию встроенного графа.
func Default() Flow {
	f := Flow{
		Labels: make(map[Status]string, len(defaultLabels)),
		Next:   make(map[Status][]Status, len(defaultNext)),
	}
	for s, l := range defaultLabels {
		f.Labels[s] = l
	}
	for s, next := range defaultNext {
		f.Next[s] = slices.Clone(next)
	}
	return f
}

type storedFlow struct {
	Labels map[string]string   `json:"labels"`
	Flow   map[string][]string `json:"flow"`
}

// Decode разбирает JSON из настроек строго: любой неизвестный статус или нарушение
// структуры графа возвращается ошибкой.
func Decode(raw string) (Flow, error) {
	if strings.TrimSpace(raw) == "" {
		return Flow{}, ErrEmptyConfig
	}

	var stored storedFlow
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return Flow{}, fmt.Errorf("JSON do fluxo inválido: %w", err)
	}

	f := Default()
	for key, label := range stored.Labels {
		s, err := ParseStatus(key)
		if err != nil {
			return Flow{}, err
		}
		if strings.TrimSpace(label) != "" {
			f.Labels[s] = strings.TrimSpace(label)
		}
	}

	// Только подписи без графа — оставляем переходы по умолчанию.
	if stored.Flow != nil {
		f.Next = make(map[Status][]Status, len(stored.Flow))
		for key, targets := range stored.Flow {
			from, err := ParseStatus(key)
			if err != nil {
				return Flow{}, err
			}
			next := make([]Status, 0, len(targets))
			for _, t := range targets {
				to, err := ParseStatus(t)
				if err != nil {
					return Flow{}, err
				}
				next = append(next, to)
			}
			f.Next[from] = next
		}
	}

	if err := f.Validate(); err != nil {
		return Flow{}, err
	}
	return f, nil
}

// Parse никогда не падает: пустая, битая или невалидная конфигурация даёт Default().
func Parse(raw string) Flow {
	f, err := Decode(raw)
	if err != nil {
		return Default()
	}
	return f
}

func (f Flow) Encode() (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (f Flow) CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	return slices.Contains(f.Next[from], to)
}

func (f Flow) NextOf(from Status) []Status {
	return slices.Clone(f.Next[from])
}

func (f Flow) Label(s Status) string {
	if l, ok := f.Labels[s]; ok && l != "" {
		return l
	}
	if l, ok := defaultLabels[s]; ok {
		return l
	}
	return string(s)
}

var ErrEmptyConfig = errors.New("configuração de fluxo vazia")

// ValidationError перечисляет все найденные проблемы графа.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "fluxo de status inválido: " + strings.Join(e.Problems, "; ")
}

// Validate проверяет граф перед сохранением. Циклы между нетерминальными
// статусами допустимы (em_reparo ⇄ testes), «сироты» и тупики — нет.
func (f Flow) Validate() error {
	var problems []string

	for from, targets := range f.Next {
		if !from.Valid() {
			problems = append(problems, fmt.Sprintf("status desconhecido %q", from))
			continue
		}
		seen := make(map[Status]bool, len(targets))
		for _, to := range targets {
			switch {
			case !to.Valid():
				problems = append(problems, fmt.Sprintf("%s: destino desconhecido %q", from, to))
			case to == from:
				problems = append(problems, fmt.Sprintf("%s: transição para o próprio status", from))
			case seen[to]:
				problems = append(problems, fmt.Sprintf("%s: destino %s repetido", from, to))
			}
			seen[to] = true
		}
	}

	for _, s := range All {
		targets, ok := f.Next[s]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: status ausente no fluxo", s))
			continue
		}
		if IsTerminal(s) && len(targets) > 0 {
			problems = append(problems, fmt.Sprintf("%s: status final não pode ter transições", s))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	reachable := f.reachableFrom(Initial)
	for _, s := range All {
		if !reachable[s] {
			problems = append(problems, fmt.Sprintf("%s: inalcançável a partir de %s", s, Initial))
		}
	}

	canFinish := f.reachingTerminal()
	for _, s := range All {
		if !canFinish[s] {
			problems = append(problems, fmt.Sprintf("%s: não leva a um status final", s))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (f Flow) reachableFrom(start Status) map[Status]bool {
	visited := map[Status]bool{start: true}
	queue := []Status{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range f.Next[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// reachingTerminal — обратный обход от финальных статусов.
func (f Flow) reachingTerminal() map[Status]bool {
	reverse := make(map[Status][]Status)
	for from, targets := range f.Next {
		for _, to := range targets {
			reverse[to] = append(reverse[to], from)
		}
	}

	visited := make(map[Status]bool)
	var queue []Status
	for _, s := range All {
		if IsTerminal(s) {
			visited[s] = true
			queue = append(queue, s)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, prev := range reverse[cur] {
			if !visited[prev] {
				visited[prev] = true
				queue = append(queue, prev)
			}
		}
	}
	return visited
}

// StatusView — статус с подписью и доступными переходами для UI.
type StatusView struct {
	Status   Status   `json:"status"`
	Label    string   `json:"label"`
	Next     []Status `json:"next"`
	Terminal bool     `json:"terminal"`
}

func (f Flow) Views() []StatusView {
	out := make([]StatusView, 0, len(All))
	for _, s := range All {
		next := f.NextOf(s)
		if next == nil {
			next = []Status{}
		}
		out = append(out, StatusView{Status: s, Label: f.Label(s), Next: next, Terminal: IsTerminal(s)})
	}
	return out
}
