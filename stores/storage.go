package stores

import (
	"slidesync/config"
	"slidesync/core"
	"slidesync/stores/aws"
	"slidesync/stores/filesystem"
	"slidesync/stores/memory"
	"slidesync/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// GetStore selects the presentation store backend from the configuration.
func GetStore(cfg *config.Config) core.PresentationStore {
	var store core.PresentationStore

	storageField := logrus.Fields{
		"storageType": cfg.StorageType,
	}

	switch cfg.StorageType {
	case "filesystem":
		storageField["filePath"] = cfg.LocalStoragePath
		store = filesystem.NewStore(cfg.LocalStoragePath)
	case "sqlite":
		storageField["dataSourceName"] = cfg.DataSourceName
		store = sqlite.NewStore(cfg.DataSourceName)
	case "s3":
		if cfg.S3BucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME environment variable must be set for s3 storage type")
		}
		storageField["bucketName"] = cfg.S3BucketName
		store = aws.NewStore(cfg.S3BucketName)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store
}
