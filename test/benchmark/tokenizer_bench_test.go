package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sarnews/newsearch/internal/indexer/stem"
	"github.com/sarnews/newsearch/internal/indexer/tokenizer"
)

var sampleTexts = map[string]string{
	"short": "El Gobierno aprobó ayer la reforma de la ley de vivienda",
	"medium": `La Comisión Europea presentó este martes un paquete de medidas para
        reforzar la vigilancia de los mercados financieros. Las propuestas, que deberán
        ser aprobadas por el Parlamento y el Consejo, incluyen nuevas obligaciones de
        transparencia para los fondos de inversión y límites a las operaciones con
        derivados. Bruselas calcula que las normas entrarán en vigor en 2016.`,
	"long": strings.Repeat(`Miles de personas se manifestaron el domingo en el centro de la
        ciudad para exigir mejoras en el transporte público. Los organizadores, una
        plataforma de asociaciones vecinales, cifraron la asistencia en veinte mil
        personas; la Delegación del Gobierno rebajó la cifra a seis mil. La marcha
        transcurrió sin incidentes y terminó con la lectura de un manifiesto. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = tokenizer.Tokenize(text)
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = tokenizer.Terms(text)
		}
	})
}

func BenchmarkSnowballStem(b *testing.B) {
	s, err := stem.NewSnowball("spanish")
	if err != nil {
		b.Fatal(err)
	}
	words := tokenizer.Terms(sampleTexts["medium"])
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, w := range words {
			_ = s.Stem(w)
		}
	}
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	sizes := []int{10, 100, 500, 1000, 5000}
	baseWord := "noticias política economía sociedad cultura "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = tokenizer.Tokenize(text)
			}
		})
	}
}
