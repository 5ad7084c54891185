package client

// Environment bundles the per-deployment constants a client needs: the
// backend base URL and the default chain identifier applied when an ACL
// policy omits one.
type Environment struct {
	// Name labels the environment in logs and CLI output.
	Name string
	// BaseURL is the backend base URL, without a trailing slash.
	BaseURL string
	// ChainID is the default chain identifier for ACL resolution.
	ChainID int64
}

// Production targets the mainnet backend.
func Production() Environment {
	return Environment{
		Name:    "production",
		BaseURL: "https://api.grove.storage",
		ChainID: 232,
	}
}

// Testnet targets the testnet backend.
func Testnet() Environment {
	return Environment{
		Name:    "testnet",
		BaseURL: "https://api.testnet.grove.storage",
		ChainID: 37111,
	}
}

// CustomEnvironment targets a self-hosted or development backend.
func CustomEnvironment(baseURL string, chainID int64) Environment {
	return Environment{
		Name:    "custom",
		BaseURL: baseURL,
		ChainID: chainID,
	}
}
