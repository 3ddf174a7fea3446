package generate

import (
	"path/filepath"
	"strings"

	"github.com/phobologic/testgen/internal/model"
)

const promptHeader = `Write a Jest unit test code block to thoroughly test the functionality and edge cases of the following TypeScript function. Make sure to cover various inputs and expected outputs, including successful cases, failing cases, and boundary conditions.
Example code to be tested:
`

const promptContext = `
The function uses the following declarations from the same module:
`

const promptRules = `
If there are comments, you can refer to the meaning of the function in the comments to identify its purpose for testing. If there is a prompt in the comments, you can refer to the content of the prompt to generate testing rules.
Please note that if the function relies on an external function or variable that is not provided, and it is in the context of the function, it cannot be mocked in Jest.
The Jest test environment is "jsdom", so mock functions should be used instead of mock DOM functions or properties to redefine DOM properties.
Please ensure that the generated unit tests are based on TypeScript and do not contain any type-related errors.
As a result, there is no need to write import declaration.
For a variable or method within the same class, unit tests are included in one describe block.
`

// Prompt builds the completion prompt for a candidate. Reference snippets
// are appended as context after the code under test.
func Prompt(c model.Candidate) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n")
	b.WriteString(c.Code)
	b.WriteString("\n")
	if len(c.References) > 0 {
		b.WriteString(promptContext)
		for _, ref := range c.References {
			b.WriteString("\n")
			b.WriteString(ref)
			b.WriteString("\n")
		}
	}
	b.WriteString(promptRules)
	return b.String()
}

// PathInfo describes where the test file for a source file is written and how it
// imports the file under test.
type PathInfo struct {
	// RelativeImport is the import specifier used from the __test__ directory.
	RelativeImport string
	// WriteDir is the directory holding the source file.
	WriteDir string
	// FileName is the source file name without extension.
	FileName string
}

// PathInfoFor derives the PathInfo of a source file. An index file is
// imported through its directory.
func PathInfoFor(absPath string) PathInfo {
	base := filepath.Base(absPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	rel := "../" + name
	if name == "index" {
		rel = ".."
	}
	return PathInfo{
		RelativeImport: rel,
		WriteDir:       filepath.Dir(absPath),
		FileName:       name,
	}
}

// SpecDir returns the directory spec files for the source file are written to.
func (p PathInfo) SpecDir() string {
	return filepath.Join(p.WriteDir, "__test__")
}

// ModuleIdent turns the file name into a JavaScript identifier usable as the
// default import binding.
func (p PathInfo) ModuleIdent() string {
	var b strings.Builder
	for i, r := range p.FileName {
		switch {
		case r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_module"
	}
	return b.String()
}
