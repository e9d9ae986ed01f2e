package shader

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

// Magic is the first word of a SPIR-V module.
const Magic = 0x07230203

type Source interface {
	Source(name string) (string, error)
}

// Compiler turns logical shader names into SPIR-V words. Sources do not
// change while the program runs, so results are cached by name.
type Compiler struct {
	src   Source
	cache map[string][]uint32
}

func NewCompiler(src Source) *Compiler {
	return &Compiler{src: src, cache: map[string][]uint32{}}
}

func (c *Compiler) Compile(name string) ([]uint32, error) {
	if words, ok := c.cache[name]; ok {
		return words, nil
	}
	wgsl, err := c.src.Source(name)
	if err != nil {
		return nil, err
	}
	spirv, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("shader: compile %s: %w", name, err)
	}
	words, err := Words(spirv)
	if err != nil {
		return nil, fmt.Errorf("shader: compile %s: %w", name, err)
	}
	c.cache[name] = words
	return words, nil
}

// Words packs little-endian SPIR-V bytes into 32-bit words and checks the
// module header.
func Words(spirv []byte) ([]uint32, error) {
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("spir-v length %d is not a multiple of 4", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[4*i:])
	}
	if len(words) == 0 || words[0] != Magic {
		return nil, fmt.Errorf("missing spir-v magic number")
	}
	return words, nil
}
