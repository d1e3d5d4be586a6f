package setup

const (
	EnvIpfsApiUrl     = "IPFS_API_URL"
	EnvOutputDir      = "OUTPUT_DIR"
	EnvUseJsonSuffix  = "USE_JSON_SUFFIX"
	EnvStorageBackend = "STORAGE_BACKEND"
	EnvPinataJwtKey   = "PINATA_JWT_KEY"
	EnvCollectionFile = "COLLECTION_FILE"
	EnvApiIpPort      = "API_IP_PORT"
	EnvVerifyUploads  = "VERIFY_UPLOADS"
)
