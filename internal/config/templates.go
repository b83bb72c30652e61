package config

import (
	"fmt"
	"os"
)

func Template() string {
	return defaultTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(defaultTemplate), 0o600)
}

const defaultTemplate = `# bytes of the serialized message list per frame; 0 disables chunking
chunk_size = 350

# 2 carries message ids, 1 is the legacy layout without them
envelope_version = 2

deeplink_host = "airgap-wallet://"
deeplink_param = "d"

# extra schema documents, named <type>[.<protocol>].json
# schema_dir = "./schemas"

log_level = "info"
`
