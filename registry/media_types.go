package registry

// Media types and annotations for bundle artifacts in OCI registries.
const (
	// ArtifactType identifies bundles as an OCI 1.1 artifact type.
	ArtifactType = "application/vnd.meigma.bundle.v1"

	// MediaTypeArchive is the media type of the archive layer.
	MediaTypeArchive = "application/vnd.meigma.bundle.archive.v1.tar+gzip"

	// MediaTypeSignature is the media type of the detached signature layer.
	MediaTypeSignature = "application/vnd.meigma.bundle.signature.v1"

	// AnnotationIdentifier carries the bundle identifier on the manifest.
	AnnotationIdentifier = "com.meigma.bundle.identifier"

	// AnnotationVersion carries the bundle version on the manifest.
	AnnotationVersion = "com.meigma.bundle.version"
)
