package artifacts

// Aliases for unexported artifact file names, for use by external tests.
const (
	ModelFile   = modelFile
	ScalerFile  = scalerFile
	EncoderFile = encoderFile
)
