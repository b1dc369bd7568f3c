// Package logging builds named zap loggers with a console sink filtered at a
// requested level and an optional file sink that records everything.
//
// Loggers created through Setup are kept in a process-wide registry so each
// name maps to a single configured instance:
//
//	logger, err := logging.Setup(logging.Options{
//		Level:  "info",
//		File:   logging.DefaultFile,
//		LogDir: layout.Logs,
//	})
//	if err != nil {
//		return err
//	}
//	defer logging.Shutdown()
package logging
