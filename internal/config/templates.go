package config

import (
	"fmt"
	"os"
	"strings"
)

// Template returns a commented ubxdump config for the given source kind.
func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case SourceSerial, "":
		return serialTemplate, nil
	case SourceFile:
		return fileTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serialTemplate = `name = "ubxdump"
# 0 selects the revision compiled in by build tags.
revision = 0
max_payload_len = 1240
alloc_mode = "fixed"

[source]
kind = "serial"
path = "/dev/ttyACM0"
baud_rate = 38400
read_chunk = 512

[output]
pretty = false
unrecognized = false
errors = true

[metrics]
addr = "127.0.0.1:9464"
cors_origins = ["http://localhost:3000"]

[[poll]]
message = "MON-VER"

[[poll]]
message = "CFG-RATE"
interval = "30s"
`

const fileTemplate = `name = "ubxdump"
revision = 23
alloc_mode = "dynamic"

[source]
kind = "file"
# Plain captures or zstd compressed ones ending in .zst.
path = "capture.ubx.zst"
read_chunk = 4096

[output]
pretty = true
unrecognized = true
errors = true
`
