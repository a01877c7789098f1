package embedding

// ByteValueForTest exposes the digest byte mapping for testing purposes
func ByteValueForTest(b byte) float32 {
	return byteValue(b)
}
