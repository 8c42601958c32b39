package anchor

import "crypto/sha256"

// DiscriminatorLength is the size of the instruction / account prefix.
const DiscriminatorLength = 8

// InstructionDiscriminator is sha256("global:<snake_name>")[:8].
func InstructionDiscriminator(name string) [DiscriminatorLength]byte {
	return sighash("global", snakeCase(name))
}

// AccountDiscriminator is sha256("account:<Name>")[:8].
func AccountDiscriminator(name string) [DiscriminatorLength]byte {
	return sighash("account", name)
}

func sighash(namespace string, name string) [DiscriminatorLength]byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))

	var out [DiscriminatorLength]byte
	copy(out[:], sum[:DiscriminatorLength])

	return out
}
