// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package store_test

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/propsuite/internal/store"
	"github.com/holomush/propsuite/pkg/prop"
)

func instanceSet(opts ...prop.Option) *prop.Set {
	return prop.MustNewSet([]prop.Spec{
		{Name: "Gain", Kind: prop.KindDouble, Dimension: 3, Default: "1"},
		{Name: "OfxPropLabel", Kind: prop.KindString, Dimension: 1},
		{Name: "OfxImageEffectPropSupportedPixelDepths", Kind: prop.KindString},
		{Name: "OfxPropInstanceData", Kind: prop.KindPointer, Dimension: 1},
	}, opts...)
}

var _ = Describe("SnapshotStore", Ordered, func() {
	var (
		ctx       context.Context
		pool      *pgxpool.Pool
		snapshots *store.SnapshotStore
	)

	BeforeAll(func() {
		ctx = context.Background()
		migrator, err := store.NewMigrator(databaseURL)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Close()).To(Succeed())

		pool, err = store.Connect(ctx, databaseURL)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(pool.Close)
		snapshots = store.NewSnapshotStore(pool)
	})

	It("round-trips the non-pointer values of a set", func() {
		src := instanceSet()
		Expect(prop.PutN(src, "Gain", []float64{0.5, 0.75, 1.25})).To(Succeed())
		Expect(prop.Put(src, "OfxPropLabel", 0, "Warm")).To(Succeed())
		Expect(prop.PutN(src, "OfxImageEffectPropSupportedPixelDepths", []string{"OfxBitDepthFloat", "OfxBitDepthByte"})).To(Succeed())
		Expect(prop.Put(src, "OfxPropInstanceData", 0, uintptr(0xbeef))).To(Succeed())
		Expect(snapshots.Save(ctx, "tint/instance-1", src)).To(Succeed())

		dst := instanceSet()
		Expect(snapshots.Load(ctx, "tint/instance-1", dst)).To(Succeed())

		Expect(prop.GetN[float64](dst, "Gain", 3)).To(Equal([]float64{0.5, 0.75, 1.25}))
		Expect(prop.Get[string](dst, "OfxPropLabel", 0)).To(Equal("Warm"))
		Expect(prop.GetN[string](dst, "OfxImageEffectPropSupportedPixelDepths", 5)).
			To(Equal([]string{"OfxBitDepthFloat", "OfxBitDepthByte"}))
		Expect(prop.Get[uintptr](dst, "OfxPropInstanceData", 0)).To(BeZero())
	})

	It("replaces a snapshot saved under the same key", func() {
		src := instanceSet()
		Expect(prop.PutN(src, "OfxImageEffectPropSupportedPixelDepths", []string{"OfxBitDepthShort"})).To(Succeed())
		Expect(snapshots.Save(ctx, "tint/instance-1", src)).To(Succeed())

		dst := instanceSet()
		Expect(snapshots.Load(ctx, "tint/instance-1", dst)).To(Succeed())
		Expect(prop.GetN[string](dst, "OfxImageEffectPropSupportedPixelDepths", 5)).To(Equal([]string{"OfxBitDepthShort"}))
		Expect(prop.Get[string](dst, "OfxPropLabel", 0)).To(BeEmpty())

		infos, err := snapshots.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(infos).To(HaveLen(1))
		Expect(infos[0].SetID).To(Equal(src.ID()))
	})

	It("deletes snapshots", func() {
		Expect(snapshots.Delete(ctx, "tint/instance-1")).To(Succeed())

		err := snapshots.Load(ctx, "tint/instance-1", instanceSet())
		Expect(err).To(HaveOccurred())
		Expect(prop.ErrorCode(err)).To(Equal(store.CodeNotFound))
	})
})
