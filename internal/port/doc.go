// Package port parses and validates the relay's listen port.
//
// The port comes from the PORT environment variable, the config file or the
// --port flag. An empty value falls back to Default (3000):
//
//	p, err := port.Parse(os.Getenv("PORT"))
//	srv.Addr = port.ListenAddr(p)
package port
