package params

import (
	"github.com/mitchellh/go-homedir"
	"path/filepath"
	"runtime"
)

const (
	AppName = "gpxreplay"

	// GPXCreator is written to the creator attribute of every output file.
	GPXCreator = AppName

	DefaultInputDir   = "broken"
	DefaultOutputDir  = "fixed"
	DefaultZipName    = "fixed.zip"
	DefaultCombined   = "combined_routes.gpx"
	DefaultGPXVersion = "1.1"

	FixSuffix = "_fix"
)

var DefaultWorkers = runtime.NumCPU()

var DatadirRoot = func() string {
	home, err := homedir.Dir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(home, "."+AppName)
}()

var LedgerDBName = "state.db"
var LedgerBucket = []byte("ledger")
