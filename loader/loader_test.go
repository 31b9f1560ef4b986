package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/loader"
)

var _ = Describe("Loader", func() {
	var dir string

	writeFile := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, data, 0644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "loader_test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	Describe("raw images", func() {
		It("should load a word image verbatim", func() {
			image := binary.LittleEndian.AppendUint32(nil, 0x02A00093)
			image = binary.LittleEndian.AppendUint32(image, 0x0000006F)
			path := writeFile("prog.bin", image)

			program, err := loader.Load(path, 0x100)

			Expect(err).NotTo(HaveOccurred())
			Expect(program.Code).To(Equal(image))
			Expect(program.Base).To(Equal(uint32(0x100)))
			Expect(program.Labels).To(BeNil())
		})

		It("should reject a truncated image", func() {
			path := writeFile("prog.bin", []byte{0x93, 0x00})

			_, err := loader.Load(path, 0)

			Expect(err).To(MatchError(ContainSubstring("whole number of words")))
		})

		It("should reject an empty image", func() {
			path := writeFile("prog.bin", nil)

			_, err := loader.Load(path, 0)

			Expect(err).To(HaveOccurred())
		})

		It("should report a missing file", func() {
			_, err := loader.Load(filepath.Join(dir, "nope.bin"), 0)

			Expect(err).To(MatchError(os.ErrNotExist))
		})
	})

	Describe("assembly source", func() {
		It("should assemble .s files", func() {
			path := writeFile("prog.s", []byte("start: addi x1, x0, 1\njal x0, start"))

			program, err := loader.Load(path, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(program.Code).To(HaveLen(8))
			Expect(program.Labels).To(HaveKeyWithValue("start", uint32(0)))
		})

		It("should assemble .asm files", func() {
			path := writeFile("prog.asm", []byte("nop"))

			program, err := loader.Load(path, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(program.Code).To(HaveLen(4))
		})

		It("should resolve labels against the base address", func() {
			path := writeFile("prog.s", []byte("entry: jal x0, entry"))

			program, err := loader.Load(path, 0x2000)

			Expect(err).NotTo(HaveOccurred())
			Expect(program.Labels).To(HaveKeyWithValue("entry", uint32(0x2000)))
		})

		It("should tag assembly errors with the file path", func() {
			path := writeFile("bad.s", []byte("mul x1, x2, x3"))

			_, err := loader.Load(path, 0)

			Expect(err).To(MatchError(ContainSubstring("bad.s")))
			Expect(err).To(MatchError(ContainSubstring("line 1")))
		})
	})
})
