package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	usersRegisteredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "registry",
		Name:      "users_registered_total",
		Help:      "Number of new users persisted since process start.",
	})
	exercisesLoggedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "log",
		Name:      "exercises_logged_total",
		Help:      "Number of exercises persisted since process start.",
	})
	exercisePersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "exercise_tracker",
		Subsystem: "log",
		Name:      "last_exercise_date_timestamp_seconds",
		Help:      "Unix timestamp of the most recent exercise date persisted.",
	})
)

func init() {
	prometheus.MustRegister(usersRegisteredCounter, exercisesLoggedCounter, exercisePersistGauge)
}

// RecordUserRegistered counts a freshly created user. Idempotent replays of
// an existing username are not counted.
func RecordUserRegistered() {
	usersRegisteredCounter.Inc()
}

// RecordExerciseLogged counts a persisted exercise and updates the date
// watermark gauge.
func RecordExerciseLogged(ts time.Time) {
	exercisesLoggedCounter.Inc()
	if ts.IsZero() {
		return
	}
	exercisePersistGauge.Set(float64(ts.Unix()))
}
