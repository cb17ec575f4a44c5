// Package archive reads and writes the stage artifacts of the pipeline.
//
// An archive is a stream of varint length-delimited Record messages. The
// raw archive contains Node, Way and Relation records, the semantic
// archive all other record kinds.
package archive

import (
	"bufio"
	"io"
	"os"

	protoio "github.com/gogo/protobuf/io"
	"github.com/gogo/protobuf/proto"
	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/element"
)

// maxRecordSize limits a single record. Relations carry copies of all
// member ways and their nodes and can get large.
const maxRecordSize = 1 << 30

func marshal(m proto.Message) ([]byte, error) {
	return proto.Marshal(m)
}

func unmarshal(data []byte, m proto.Message) error {
	return proto.Unmarshal(data, m)
}

// Writer writes records to an archive. Call Close to flush buffered
// records.
type Writer struct {
	buf *bufio.Writer
	w   protoio.WriteCloser
	n   int
}

func NewWriter(w io.Writer) *Writer {
	buf := bufio.NewWriterSize(w, 1<<20)
	return &Writer{buf: buf, w: protoio.NewDelimitedWriter(buf)}
}

func (w *Writer) write(rec *Record) error {
	if err := w.w.WriteMsg(rec); err != nil {
		return errors.Wrap(err, "writing record")
	}
	w.n++
	return nil
}

// Records returns the number of records written so far.
func (w *Writer) Records() int { return w.n }

func (w *Writer) Close() error {
	return w.buf.Flush()
}

func (w *Writer) WriteNode(n *osm.Node) error {
	return w.write(&Record{Node: nodeMsg(n)})
}

func (w *Writer) WriteWay(way *osm.Way) error {
	return w.write(&Record{Way: wayMsg(way)})
}

func (w *Writer) WriteRelation(r *osm.Relation) error {
	return w.write(&Record{Relation: relationMsg(r)})
}

func (w *Writer) WriteStation(s *element.TransportStation) error {
	return w.write(&Record{Station: stationMsg(s)})
}

func (w *Writer) WriteRoad(p element.Path) error {
	return w.write(&Record{Road: pathMsg(p)})
}

func (w *Writer) WriteRail(p element.Path) error {
	return w.write(&Record{Rail: pathMsg(p)})
}

func (w *Writer) WriteArea(a *element.Area) error {
	return w.write(&Record{Area: areaMsg(a)})
}

func (w *Writer) WriteLandmark(l *element.Landmark) error {
	return w.write(&Record{Landmark: &Landmark{Type: int32(l.Type), Lat: l.Lat, Lon: l.Lon}})
}

func (w *Writer) WriteTubeRail(t *element.TubeRail) error {
	return w.write(&Record{TubeRail: &TubeRail{Line: int32(t.Line), Path: pathMsg(t.Path)}})
}

// Reader reads records from an archive.
type Reader struct {
	r protoio.ReadCloser
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: protoio.NewDelimitedReader(r, maxRecordSize)}
}

// Next returns the next record or io.EOF after the last record.
func (r *Reader) Next() (*Record, error) {
	rec := &Record{}
	if err := r.r.ReadMsg(rec); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "reading record")
	}
	return rec, nil
}

// WriteOSM writes all entities of data ordered by kind and id.
func WriteOSM(w io.Writer, data *element.OSMData) error {
	aw := NewWriter(w)
	nodeIds := element.SortedIds(data.Nodes)
	for _, id := range nodeIds {
		n := data.Nodes[id]
		if err := aw.WriteNode(&n); err != nil {
			return err
		}
	}
	wayIds := element.SortedIds(data.Ways)
	for _, id := range wayIds {
		way := data.Ways[id]
		if err := aw.WriteWay(&way); err != nil {
			return err
		}
	}
	relIds := element.SortedIds(data.Relations)
	for _, id := range relIds {
		rel := data.Relations[id]
		if err := aw.WriteRelation(&rel); err != nil {
			return err
		}
	}
	return aw.Close()
}

// ReadOSM reads a raw archive.
func ReadOSM(r io.Reader) (*element.OSMData, error) {
	data := element.NewOSMData()
	ar := NewReader(r)
	for {
		rec, err := ar.Next()
		if err == io.EOF {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
		switch {
		case rec.Node != nil:
			data.Nodes[rec.Node.Id] = nodeFromMsg(rec.Node)
		case rec.Way != nil:
			data.Ways[rec.Way.Id] = wayFromMsg(rec.Way)
		case rec.Relation != nil:
			data.Relations[rec.Relation.Id] = relationFromMsg(rec.Relation)
		default:
			return nil, errors.Errorf("unexpected record in raw archive: %s", rec)
		}
	}
}

// WriteSemantic writes all semantic elements in their slice order.
func WriteSemantic(w io.Writer, sem *element.SemanticMapElements) error {
	aw := NewWriter(w)
	for i := range sem.Stations {
		if err := aw.WriteStation(&sem.Stations[i]); err != nil {
			return err
		}
	}
	for _, p := range sem.Rails {
		if err := aw.WriteRail(p); err != nil {
			return err
		}
	}
	for _, p := range sem.Roads {
		if err := aw.WriteRoad(p); err != nil {
			return err
		}
	}
	for i := range sem.Areas {
		if err := aw.WriteArea(&sem.Areas[i]); err != nil {
			return err
		}
	}
	for i := range sem.Landmarks {
		if err := aw.WriteLandmark(&sem.Landmarks[i]); err != nil {
			return err
		}
	}
	for i := range sem.TubeRails {
		if err := aw.WriteTubeRail(&sem.TubeRails[i]); err != nil {
			return err
		}
	}
	return aw.Close()
}

// ReadSemantic reads a semantic archive. Elements keep the order in which
// they were written.
func ReadSemantic(r io.Reader) (*element.SemanticMapElements, error) {
	sem := &element.SemanticMapElements{}
	ar := NewReader(r)
	for {
		rec, err := ar.Next()
		if err == io.EOF {
			return sem, nil
		}
		if err != nil {
			return nil, err
		}
		switch {
		case rec.Station != nil:
			sem.Stations = append(sem.Stations, element.TransportStation{
				Name: rec.Station.Name,
				Type: element.StationType(rec.Station.Type),
				Lat:  rec.Station.Lat,
				Lon:  rec.Station.Lon,
			})
		case rec.Rail != nil:
			sem.Rails = append(sem.Rails, pathFromMsg(rec.Rail))
		case rec.Road != nil:
			sem.Roads = append(sem.Roads, pathFromMsg(rec.Road))
		case rec.Area != nil:
			sem.Areas = append(sem.Areas, areaFromMsg(rec.Area))
		case rec.Landmark != nil:
			sem.Landmarks = append(sem.Landmarks, element.Landmark{
				Type: element.LandmarkType(rec.Landmark.Type),
				Lat:  rec.Landmark.Lat,
				Lon:  rec.Landmark.Lon,
			})
		case rec.TubeRail != nil:
			sem.TubeRails = append(sem.TubeRails, element.TubeRail{
				Line: element.TubeLine(rec.TubeRail.Line),
				Path: pathFromMsg(rec.TubeRail.Path),
			})
		default:
			return nil, errors.Errorf("unexpected record in semantic archive: %s", rec)
		}
	}
}

func ReadOSMFile(path string) (*element.OSMData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := ReadOSM(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return data, nil
}

func ReadSemanticFile(path string) (*element.SemanticMapElements, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sem, err := ReadSemantic(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return sem, nil
}
