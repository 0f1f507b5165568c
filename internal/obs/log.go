package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

const serviceName = "jobdesk-api"

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the shared logger. Every line it emits is a single
// JSON object so the log collector can index fields directly.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// LogRequest emits one JSON line for a completed HTTP request, stamped
// with the service name unless the caller already set one.
func LogRequest(entry map[string]any) {
	if entry == nil {
		entry = map[string]any{}
	}
	if _, ok := entry["service"]; !ok {
		entry["service"] = serviceName
	}
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"service":"` + serviceName + `","level":"error","msg":"log marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}
