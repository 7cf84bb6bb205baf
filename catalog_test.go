package modbus_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/dlz-automation/modbus"
)

var _ = Describe("TagCatalog", func() {
	var catalog *TagCatalog

	BeforeEach(func() {
		catalog = NewTagCatalog()
	})

	Describe("RegisterTags", func() {
		It("sorts by register type then register number", func() {
			catalog.RegisterTags([]Tag{
				{Key: "c", RegisterType: Holding, RegisterNumber: 5},
				{Key: "a", RegisterType: Coil, RegisterNumber: 10},
				{Key: "b", RegisterType: Coil, RegisterNumber: 2},
			})
			tags := catalog.Tags()
			Expect(tags).To(HaveLen(3))
			Expect(tags[0].Key).To(Equal("b"))
			Expect(tags[1].Key).To(Equal("a"))
			Expect(tags[2].Key).To(Equal("c"))
		})

		It("builds a key-to-index lookup", func() {
			catalog.RegisterTags([]Tag{{Key: "pressure", RegisterType: Holding, RegisterNumber: 7}})
			tag, ok := catalog.TagByKey("pressure")
			Expect(ok).To(BeTrue())
			Expect(tag.RegisterNumber).To(Equal(uint16(7)))

			_, ok = catalog.TagByKey("missing")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ClearTags", func() {
		It("empties the tag list and the exclusion sets", func() {
			catalog.RegisterTags([]Tag{{Key: "a", RegisterType: Holding, RegisterNumber: 1}})
			catalog.ExcludeRegister(Holding, 1)
			catalog.ClearTags()

			Expect(catalog.Tags()).To(BeEmpty())
			Expect(catalog.IsExcluded(Holding, 1)).To(BeFalse())
			_, ok := catalog.TagByKey("a")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("exclusion set", func() {
		It("tracks excluded registers independently per register type", func() {
			catalog.ExcludeRegister(Holding, 5)
			Expect(catalog.IsExcluded(Holding, 5)).To(BeTrue())
			Expect(catalog.IsExcluded(Coil, 5)).To(BeFalse())
		})

		It("can be undone with IncludeRegister", func() {
			catalog.ExcludeRegister(Holding, 5)
			catalog.IncludeRegister(Holding, 5)
			Expect(catalog.IsExcluded(Holding, 5)).To(BeFalse())
		})
	})
})
