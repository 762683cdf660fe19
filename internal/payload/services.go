package payload

// Embedding names known to Flowise.
const (
	EmbeddingOpenAI       = "openAIEmbeddings"
	EmbeddingHuggingFace  = "huggingFaceEmbeddings"
	EmbeddingCohere       = "cohereEmbeddings"
	EmbeddingAzureOpenAI  = "azureOpenAIEmbeddings"
	EmbeddingGoogleVertex = "googleVertexEmbeddings"
)

// Vector store names known to Flowise.
const (
	VectorStorePinecone = "pinecone"
	VectorStoreQdrant   = "qdrant"
	VectorStoreChroma   = "chroma"
	VectorStoreWeaviate = "weaviate"
	VectorStoreMilvus   = "milvus"
	VectorStoreRedis    = "redis"
	VectorStoreFaiss    = "faiss"
)

// Record manager names known to Flowise.
const (
	RecordManagerPostgres = "postgresRecordManager"
	RecordManagerRedis    = "redisRecordManager"
	RecordManagerMemory   = "inMemoryRecordManager"
	RecordManagerFile     = "fileRecordManager"
)

var (
	knownEmbeddings = set(EmbeddingOpenAI, EmbeddingHuggingFace, EmbeddingCohere, EmbeddingAzureOpenAI, EmbeddingGoogleVertex)

	knownVectorStores = set(VectorStorePinecone, VectorStoreQdrant, VectorStoreChroma, VectorStoreWeaviate,
		VectorStoreMilvus, VectorStoreRedis, VectorStoreFaiss)

	knownRecordManagers = set(RecordManagerPostgres, RecordManagerRedis, RecordManagerMemory, RecordManagerFile)
)

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
