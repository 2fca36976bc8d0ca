package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *BuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Content errors

func ContentInvalid(path string, cause error) *BuildError {
	return Wrap(cause, CategoryContent, SeverityFatal, "invalid content document").
		WithContext("path", path)
}

func ContentUnreadable(path string, cause error) *BuildError {
	return Wrap(cause, CategoryContent, SeverityFatal, "unreadable content document").
		WithContext("path", path)
}

func DuplicateDestination(dest, first, second string) *BuildError {
	return New(CategoryContent, SeverityFatal, "duplicate output destination").
		WithContext("destination", dest).
		WithContext("first_source", first).
		WithContext("second_source", second)
}

// Rendering errors

func TemplateNotFound(name, page string) *BuildError {
	return New(CategoryRender, SeverityFatal, "template not found").
		WithContext("template", name).
		WithContext("page", page)
}

func RenderFailed(page string, cause error) *BuildError {
	return Wrap(cause, CategoryRender, SeverityFatal, "page rendering failed").
		WithContext("page", page)
}

// Asset errors

func AssetMissing(ref, page string) *BuildError {
	return New(CategoryAsset, SeverityFatal, "referenced asset not found").
		WithContext("reference", ref).
		WithContext("page", page)
}

func TransformFailed(ref string, cause error) *BuildError {
	return Wrap(cause, CategoryAsset, SeverityFatal, "image transform failed").
		WithContext("reference", ref)
}

// Extension errors

func ExtensionFailed(name string, cause error) *BuildError {
	return Wrap(cause, CategoryExtension, SeverityFatal, "extension failed").
		WithContext("extension", name)
}

func ExtensionUnknown(name string) *BuildError {
	return New(CategoryExtension, SeverityFatal, "unknown extension").
		WithContext("extension", name)
}

// Filesystem errors

func WriteFailed(path string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "output write failed").
		WithContext("path", path)
}

func PruneFailed(path string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "orphan deletion failed").
		WithContext("path", path)
}

// Manifest errors are recoverable: a corrupt manifest only degrades
// pruning, never correctness of the new output.

func ManifestUnreadable(path string, cause error) *BuildError {
	return Wrap(cause, CategoryManifest, SeverityWarning, "build manifest unreadable, treating as empty").
		WithContext("path", path)
}

func ManifestPersistFailed(path string, cause error) *BuildError {
	return Wrap(cause, CategoryManifest, SeverityFatal, "build manifest persist failed").
		WithContext("path", path)
}
