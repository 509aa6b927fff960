// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package validate_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/propsuite/pkg/prop"
	"github.com/holomush/propsuite/pkg/validate"
)

func ptr(s string) *string { return &s }

var _ = Describe("Validate", func() {
	const contexts = "OfxImageEffectPropSupportedContexts"

	supportedContexts := validate.Expectation{
		Name:     contexts,
		Kind:     prop.KindString,
		Required: true,
		Default:  ptr("OfxImageEffectContextFilter"),
	}

	newSet := func(specs ...prop.Spec) *prop.Set {
		s, err := prop.NewSet(specs)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	Context("when the property is absent", func() {
		It("reports exactly one missing violation", func() {
			s := newSet()
			violations := validate.Validate(s, []validate.Expectation{supportedContexts}, true)
			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Property).To(Equal(contexts))
			Expect(violations[0].Reason).To(Equal(validate.ReasonMissing))
		})
	})

	Context("when the default does not match", func() {
		It("reports exactly one default mismatch when defaults are checked", func() {
			s := newSet(prop.Spec{Name: contexts, Kind: prop.KindString, Default: "OfxImageEffectContextGeneral"})
			violations := validate.Validate(s, []validate.Expectation{supportedContexts}, true)
			Expect(violations).To(HaveLen(1))
			Expect(violations[0].Reason).To(Equal(validate.ReasonDefaultMismatch))
		})

		It("reports nothing when defaults are not checked", func() {
			s := newSet(prop.Spec{Name: contexts, Kind: prop.KindString, Default: "OfxImageEffectContextGeneral"})
			Expect(validate.Validate(s, []validate.Expectation{supportedContexts}, false)).To(BeEmpty())
		})
	})

	Context("when the property matches", func() {
		It("reports nothing", func() {
			s := newSet(prop.Spec{Name: contexts, Kind: prop.KindString, Default: "OfxImageEffectContextFilter"})
			Expect(validate.Validate(s, []validate.Expectation{supportedContexts}, true)).To(BeEmpty())
		})
	})

	It("reports a kind mismatch without further checks", func() {
		s := newSet(prop.Spec{Name: contexts, Kind: prop.KindInt, Dimension: 3})
		violations := validate.Validate(s, []validate.Expectation{supportedContexts}, true)
		Expect(violations).To(HaveLen(1))
		Expect(violations[0].Reason).To(Equal(validate.ReasonKindMismatch))
		Expect(violations[0].Expected).To(Equal("string"))
		Expect(violations[0].Actual).To(Equal("int"))
	})

	It("reports an empty required variable-dimension property", func() {
		s := newSet(prop.Spec{Name: contexts, Kind: prop.KindString})
		exp := supportedContexts
		exp.Default = nil
		violations := validate.Validate(s, []validate.Expectation{exp}, true)
		Expect(violations).To(ConsistOf(HaveField("Reason", validate.ReasonEmpty)))
	})

	It("reports a fixed dimension mismatch", func() {
		s := newSet(prop.Spec{Name: "OfxImageEffectPropRenderWindow", Kind: prop.KindInt, Dimension: 2})
		exp := validate.Expectation{Name: "OfxImageEffectPropRenderWindow", Kind: prop.KindInt, Dimension: 4}
		violations := validate.Validate(s, []validate.Expectation{exp}, false)
		Expect(violations).To(HaveLen(1))
		Expect(violations[0].Reason).To(Equal(validate.ReasonDimensionMismatch))
		Expect(violations[0].Actual).To(Equal("2"))
	})

	It("reports every violation in expectation order", func() {
		s := newSet(
			prop.Spec{Name: "A", Kind: prop.KindDouble, Dimension: 1, Default: "2"},
			prop.Spec{Name: "B", Kind: prop.KindInt, Dimension: 1},
		)
		exps := []validate.Expectation{
			{Name: "Missing", Kind: prop.KindInt, Dimension: 1},
			{Name: "A", Kind: prop.KindDouble, Dimension: 1, Default: ptr("1")},
			{Name: "B", Kind: prop.KindString, Dimension: 1},
		}
		violations := validate.Validate(s, exps, true)
		Expect(violations).To(HaveLen(3))
		Expect(violations[0].Property).To(Equal("Missing"))
		Expect(violations[1].Reason).To(Equal(validate.ReasonDefaultMismatch))
		Expect(violations[2].Reason).To(Equal(validate.ReasonKindMismatch))
	})

	It("flags an expectation whose default cannot be parsed", func() {
		s := newSet(prop.Spec{Name: "A", Kind: prop.KindInt, Dimension: 1})
		exp := validate.Expectation{Name: "A", Kind: prop.KindInt, Dimension: 1, Default: ptr("one")}
		violations := validate.Validate(s, []validate.Expectation{exp}, true)
		Expect(violations).To(ConsistOf(HaveField("Reason", validate.ReasonInvalidExpectation)))
	})

	It("never mutates the set", func() {
		s, err := prop.NewSet(nil, prop.Sloppy())
		Expect(err).NotTo(HaveOccurred())
		Expect(prop.PutN(s, "List", []int32{1, 2})).To(Succeed())

		exps := []validate.Expectation{
			{Name: "List", Kind: prop.KindInt, Default: ptr("1 2 3")},
			{Name: "Other", Kind: prop.KindString, Required: true},
		}
		Expect(validate.Validate(s, exps, true)).To(HaveLen(2))
		Expect(s.Names()).To(Equal([]string{"List"}))
		n, err := s.Dimension("List")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
	})

	It("ignores properties nobody expects", func() {
		s := newSet(prop.Spec{Name: "Extra", Kind: prop.KindInt})
		Expect(validate.Validate(s, nil, true)).To(BeEmpty())
	})
})
