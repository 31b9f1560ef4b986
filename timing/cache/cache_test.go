package cache_test

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/timing/cache"
)

// sparseBacking is a recording BackingStore over a word map.
type sparseBacking struct {
	words      map[uint32]uint32
	readCount  int
	writeCount int
}

func newSparseBacking() *sparseBacking {
	return &sparseBacking{words: map[uint32]uint32{}}
}

func (b *sparseBacking) Read(addr uint32, size int) []byte {
	b.readCount++
	data := make([]byte, size)
	for i := 0; i+4 <= size; i += 4 {
		binary.LittleEndian.PutUint32(data[i:], b.words[addr+uint32(i)])
	}
	return data
}

func (b *sparseBacking) Write(addr uint32, data []byte) {
	b.writeCount++
	for i := 0; i+4 <= len(data); i += 4 {
		b.words[addr+uint32(i)] = binary.LittleEndian.Uint32(data[i:])
	}
}

var _ = Describe("Cache", func() {
	var (
		backing *sparseBacking
		c       *cache.Cache
		config  cache.Config
	)

	BeforeEach(func() {
		backing = newSparseBacking()
		config = cache.DefaultIConfig() // 4 KiB, 2-way, 16 B lines
		c = cache.New(config, backing)
	})

	// conflicting returns the nth address mapping to the same set as base.
	conflicting := func(base uint32, n int) uint32 {
		numSets := config.Size / (config.Associativity * config.BlockSize)
		return base + uint32(n*numSets*config.BlockSize)
	}

	It("should miss on the first access", func() {
		result := c.Read(0x100)

		Expect(result.Hit).To(BeFalse())
		Expect(result.Latency).To(Equal(config.MissLatency))
	})

	It("should hit on a repeated read", func() {
		c.Read(0x100)
		result := c.Read(0x100)

		Expect(result.Hit).To(BeTrue())
		Expect(result.Latency).To(Equal(config.HitLatency))
	})

	It("should hit across words of the same line", func() {
		c.Read(0x100)

		Expect(c.Read(0x104).Hit).To(BeTrue())
		Expect(c.Read(0x108).Hit).To(BeTrue())
		Expect(c.Read(0x10C).Hit).To(BeTrue())
		Expect(c.Read(0x110).Hit).To(BeFalse(), "next line is a fresh miss")
	})

	It("should return backing data on a miss and on later hits", func() {
		backing.words[0x100] = 0xCAFEBABE
		backing.words[0x104] = 0x12345678

		Expect(c.Read(0x100).Data).To(Equal(uint32(0xCAFEBABE)))
		Expect(c.Read(0x104).Data).To(Equal(uint32(0x12345678)))
		Expect(backing.readCount).To(Equal(1), "one line fill serves both words")
	})

	It("should write-allocate on a write miss", func() {
		result := c.Write(0x200, 0xAABBCCDD)

		Expect(result.Hit).To(BeFalse())
		Expect(c.Read(0x200).Data).To(Equal(uint32(0xAABBCCDD)))
		Expect(backing.words[0x200]).To(BeZero(), "write-back defers the store")
	})

	It("should evict the least recently used way on a set conflict", func() {
		a := conflicting(0x100, 0)
		b := conflicting(0x100, 1)
		d := conflicting(0x100, 2)

		c.Read(a)
		c.Read(b)
		c.Read(a) // b is now LRU
		result := c.Read(d)

		Expect(result.Evicted).To(BeTrue())
		Expect(result.EvictedAddr).To(Equal(b))
		Expect(c.Read(a).Hit).To(BeTrue(), "a survived the eviction")
		Expect(c.Read(b).Hit).To(BeFalse())
	})

	It("should write back a dirty victim on eviction", func() {
		a := conflicting(0x100, 0)
		c.Write(a, 0xDEADBEEF)
		c.Read(conflicting(0x100, 1))
		c.Read(conflicting(0x100, 2)) // evicts a

		Expect(backing.words[a]).To(Equal(uint32(0xDEADBEEF)))
		Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
	})

	It("should not write back a clean victim", func() {
		c.Read(conflicting(0x100, 0))
		c.Read(conflicting(0x100, 1))
		c.Read(conflicting(0x100, 2))

		Expect(c.Stats().Evictions).To(Equal(uint64(1)))
		Expect(c.Stats().Writebacks).To(BeZero())
	})

	It("should count accesses", func() {
		c.Read(0x100)
		c.Read(0x100)
		c.Write(0x100, 1)
		c.Read(0x400)

		stats := c.Stats()
		Expect(stats.Reads).To(Equal(uint64(3)))
		Expect(stats.Writes).To(Equal(uint64(1)))
		Expect(stats.Hits).To(Equal(uint64(2)))
		Expect(stats.Misses).To(Equal(uint64(2)))
	})

	Describe("Flush", func() {
		It("should write back all dirty lines and invalidate everything", func() {
			c.Write(0x100, 0x11111111)
			c.Write(0x400, 0x22222222)
			c.Read(0x800)

			c.Flush()

			Expect(backing.words[0x100]).To(Equal(uint32(0x11111111)))
			Expect(backing.words[0x400]).To(Equal(uint32(0x22222222)))
			Expect(c.Read(0x100).Hit).To(BeFalse())
		})
	})

	Describe("Reset", func() {
		It("should invalidate lines without writeback and clear counters", func() {
			c.Write(0x100, 0x11111111)

			c.Reset()

			Expect(backing.words[0x100]).To(BeZero())
			Expect(c.Stats()).To(Equal(cache.Statistics{}))
			Expect(c.Read(0x100).Hit).To(BeFalse())
		})
	})
})

var _ = Describe("MemoryBacking", func() {
	var (
		memory  *emu.Memory
		backing *cache.MemoryBacking
	)

	BeforeEach(func() {
		memory = emu.NewMemorySized(4096)
		backing = cache.NewMemoryBacking(memory)
	})

	It("should read a line from emulator memory", func() {
		Expect(memory.WriteWord(0x10, 0xAAAA5555)).To(Succeed())
		Expect(memory.WriteWord(0x14, 0x0000FFFF)).To(Succeed())

		data := backing.Read(0x10, 16)

		Expect(binary.LittleEndian.Uint32(data[0:])).To(Equal(uint32(0xAAAA5555)))
		Expect(binary.LittleEndian.Uint32(data[4:])).To(Equal(uint32(0x0000FFFF)))
	})

	It("should write a line into emulator memory", func() {
		data := make([]byte, 16)
		binary.LittleEndian.PutUint32(data[8:], 0x13572468)

		backing.Write(0x20, data)

		Expect(memory.ReadWord(0x28)).To(Equal(uint32(0x13572468)))
	})

	It("should read past the end of memory as zero", func() {
		data := backing.Read(4096-8, 16)

		Expect(data).To(HaveLen(16))
		Expect(binary.LittleEndian.Uint32(data[8:])).To(BeZero())
	})
})
