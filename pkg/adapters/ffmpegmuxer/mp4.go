package ffmpegmuxer

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"
)

// NAL unit types of interest.
const (
	naluNonIDR = 1
	naluIDR    = 5
	naluSEI    = 6
	naluSPS    = 7
	naluPPS    = 8
	naluAUD    = 9
)

// accessUnit is one encoded picture: the NAL units of a single frame.
type accessUnit struct {
	nalus      [][]byte
	isKeyframe bool
}

// buildMP4 muxes an Annex B H.264 elementary stream into a fragmented MP4
// with a single video track.
func buildMP4(stream []byte, width, height, fps int) ([]byte, error) {
	aus := splitAccessUnits(stream)
	if len(aus) == 0 {
		return nil, ErrNoFrames
	}

	sps, pps, err := extractSPSPPS(aus)
	if err != nil {
		return nil, err
	}

	timescale := uint32(fps * 1000)
	frameDur := timescale / uint32(fps) // 1000 per frame
	trackID := uint32(1)

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")
	trak := init.Moov.Trak

	avcC, err := mp4.CreateAvcC([][]byte{sps}, [][]byte{pps}, true)
	if err != nil {
		return nil, fmt.Errorf("create avcC: %w", err)
	}

	avc1 := mp4.CreateVisualSampleEntryBox("avc1", uint16(width), uint16(height), avcC)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(avc1)
	trak.Tkhd.Width = mp4.Fixed32(width << 16)
	trak.Tkhd.Height = mp4.Fixed32(height << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, fmt.Errorf("create fragment: %w", err)
	}

	for i, au := range aus {
		flags := mp4.NonSyncSampleFlags
		if au.isKeyframe {
			flags = mp4.SyncSampleFlags
		}

		avccData := convertToAVCC(au.nalus)

		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(avccData)),
				Dur:   frameDur,
			},
			DecodeTime: uint64(i) * uint64(frameDur),
			Data:       avccData,
		})
	}

	var buf bytes.Buffer

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode moov: %w", err)
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}

	return buf.Bytes(), nil
}

// splitAccessUnits groups the NAL units of an Annex B stream into access
// units. The encoder is run with aud=1, so each frame is introduced by an
// access-unit delimiter; without delimiters, a VCL NALU closes its unit
// (valid for the bframes=0, one-slice output this adapter produces).
func splitAccessUnits(stream []byte) []accessUnit {
	nalus := parseAnnexB(stream)

	hasAUD := false
	for _, nalu := range nalus {
		if len(nalu) > 0 && nalu[0]&0x1F == naluAUD {
			hasAUD = true
			break
		}
	}

	var aus []accessUnit
	var current accessUnit

	flush := func() {
		if len(current.nalus) > 0 {
			aus = append(aus, current)
		}
		current = accessUnit{}
	}

	for _, nalu := range nalus {
		if len(nalu) == 0 {
			continue
		}
		nalType := nalu[0] & 0x1F

		if hasAUD {
			if nalType == naluAUD {
				flush()
				continue
			}
			current.nalus = append(current.nalus, nalu)
			if nalType == naluIDR {
				current.isKeyframe = true
			}
			continue
		}

		current.nalus = append(current.nalus, nalu)
		if nalType == naluIDR {
			current.isKeyframe = true
		}
		if nalType == naluNonIDR || nalType == naluIDR {
			flush()
		}
	}
	flush()

	return aus
}

// extractSPSPPS finds the first SPS and PPS NAL units in the stream.
func extractSPSPPS(aus []accessUnit) (sps, pps []byte, err error) {
	for _, au := range aus {
		for _, nalu := range au.nalus {
			if len(nalu) == 0 {
				continue
			}
			switch nalu[0] & 0x1F {
			case naluSPS:
				if sps == nil {
					sps = append([]byte(nil), nalu...)
				}
			case naluPPS:
				if pps == nil {
					pps = append([]byte(nil), nalu...)
				}
			}
		}
		if sps != nil && pps != nil {
			return sps, pps, nil
		}
	}

	if sps == nil {
		return nil, nil, fmt.Errorf("SPS not found")
	}
	return nil, nil, fmt.Errorf("PPS not found")
}

// parseAnnexB splits an Annex B byte stream into individual NAL units.
func parseAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := 0
	i := 0

	for i < len(data) {
		// Start code is 0x00 0x00 0x01 or 0x00 0x00 0x00 0x01.
		if i+2 < len(data) && data[i] == 0 && data[i+1] == 0 {
			startCodeLen := 0
			if data[i+2] == 1 {
				startCodeLen = 3
			} else if i+3 < len(data) && data[i+2] == 0 && data[i+3] == 1 {
				startCodeLen = 4
			}

			if startCodeLen > 0 {
				if i > start {
					nalus = append(nalus, data[start:i])
				}
				i += startCodeLen
				start = i
				continue
			}
		}
		i++
	}

	if start < len(data) {
		nalus = append(nalus, data[start:])
	}

	return nalus
}

// convertToAVCC serializes an access unit's NAL units into AVCC format
// (4-byte length prefixes). Parameter sets and delimiters are omitted from
// sample data: SPS/PPS live in the avcC box and AUDs are an Annex B artifact.
func convertToAVCC(nalus [][]byte) []byte {
	totalSize := 0
	for _, nalu := range nalus {
		totalSize += 4 + len(nalu)
	}

	result := make([]byte, totalSize)
	offset := 0

	for _, nalu := range nalus {
		if len(nalu) > 0 {
			switch nalu[0] & 0x1F {
			case naluSPS, naluPPS, naluAUD:
				continue
			}
		}

		length := len(nalu)
		result[offset] = byte(length >> 24)
		result[offset+1] = byte(length >> 16)
		result[offset+2] = byte(length >> 8)
		result[offset+3] = byte(length)
		offset += 4

		copy(result[offset:], nalu)
		offset += length
	}

	return result[:offset]
}
