// ABOUTME: Audio output package for sidetone playback
// ABOUTME: Provides the Output interface, an oto implementation and Sidetone
// Package output plays captured microphone audio back to the speakers.
//
// Sidetone is an io.Writer the monitoring loop tees every chunk into. While
// disabled it discards audio; the first enable opens the Output.
//
// Example:
//
//	st := output.NewSidetone(output.NewOto(), audio.DefaultFormat())
//	defer st.Close()
//	st.SetEnabled(true)
//	_, _ = st.Write(pcm)
package output
