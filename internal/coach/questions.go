package coach

// QuickQuestions are the suggested queries surfaced as chat-panel chips.
var QuickQuestions = []string{
	"¿Cómo está el equipo esta semana?",
	"¿Quién necesita atención urgente?",
	"¿Qué membresías vencen pronto?",
	"¿Cuál es la racha más larga?",
	"¿Cómo van los ingresos?",
	"¿Cómo va la distribución de volumen?",
	"¿En qué fase del mesociclo estamos?",
}
