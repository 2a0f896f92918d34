package logging

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	commonmaps "github.com/armadaproject/expctl/internal/common/maps"
)

// CommandLineFormatter prints only the message of each entry, which is what users of
// a command line tool expect to see.
type CommandLineFormatter struct{}

func (f *CommandLineFormatter) Format(entry *log.Entry) ([]byte, error) {
	return []byte(fmt.Sprintf("%s\n", entry.Message)), nil
}

// DebugCommandLineFormatter prefixes the message with the level and appends any fields,
// used when the user asked for verbose output.
type DebugCommandLineFormatter struct{}

func (f *DebugCommandLineFormatter) Format(entry *log.Entry) ([]byte, error) {
	s := fmt.Sprintf("%-5s %s", entry.Level.String(), entry.Message)
	for _, k := range commonmaps.SortedKeys(entry.Data) {
		if k == Stacktrace {
			continue
		}
		s += fmt.Sprintf(" %s=%v", k, entry.Data[k])
	}
	return []byte(s + "\n"), nil
}
