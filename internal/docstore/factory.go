package docstore

import (
	"log/slog"
	"os"
)

// Open picks a backend from the environment: Cosmos DB when the cosmos
// endpoint is set, Azure Blob when a storage account is set, otherwise a
// local file store under dataDir.
func Open(dataDir string) (Store, error) {
	if _, ok := os.LookupEnv("AZURE_COSMOS_ENDPOINT"); ok {
		db := os.Getenv("AZURE_COSMOS_DATABASE")
		if db == "" {
			db = "pantrybot"
		}
		container := os.Getenv("AZURE_COSMOS_CONTAINER")
		if container == "" {
			container = "groceries"
		}
		slog.Info("using Azure Cosmos DB store", "database", db, "container", container)
		return NewCosmosStore(db, container)
	}

	if _, ok := os.LookupEnv("AZURE_STORAGE_ACCOUNT_NAME"); ok {
		slog.Info("using Azure Blob store")
		return NewBlobStore("groceries")
	}

	if dataDir == "" {
		dataDir = "data"
	}
	slog.Info("using local file store", "dir", dataDir)
	return NewFileStore(dataDir), nil
}
