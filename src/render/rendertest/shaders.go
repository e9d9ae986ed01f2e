package rendertest

import "fmt"

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

// Shaders compiles any name to a minimal SPIR-V header unless Fail holds an
// error for it.
type Shaders struct {
	Fail     map[string]error
	Compiled []string
}

func (s *Shaders) Compile(name string) ([]uint32, error) {
	if err := s.Fail[name]; err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("rendertest: empty shader name")
	}
	s.Compiled = append(s.Compiled, name)
	return []uint32{SPIRVMagic, 0x00010000, 0, 1, 0}, nil
}
