package asmfirstpass

import (
	"github.com/stsoe/aiebu/internal/aiebuerr"
)

// Run resolves items into positions, labels, and the job/barrier/launch
// graph. It walks the stream twice: the first sweep fixes every byte
// position, size and label (label positions never depend on operand
// resolution); the second sweep builds the job graph, by which point
// every label a `@name` argument could reference already exists, so a
// forward reference that was unresolved mid-stream resolves cleanly.
func Run(items []Item, cfg Config) (*Result, error) {
	serializers := cfg.Serializers
	if serializers == nil {
		serializers = DefaultSerializers()
	}

	labels := make(map[string]*Label)
	sections := make([]Section, len(items))
	itemPos := make([]uint32, len(items))

	section := SectionText
	activeLabel := ""
	var pos uint32

	for idx := range items {
		it := &items[idx]
		itemPos[idx] = pos
		sections[idx] = section

		switch it.Kind {
		case ItemLabel:
			section = SectionData
			sections[idx] = section
			activeLabel = it.Name
			if _, exists := labels[it.Name]; exists {
				return nil, aiebuerr.InvalidAsm("duplicate label %q", it.Name)
			}
			labels[it.Name] = &Label{Name: it.Name, Pos: pos, Index: idx}
			it.size = 0

		case ItemOp:
			if it.Name == ".eop" {
				it.size = 0
			} else {
				serializer, ok := serializers[it.Name]
				if !ok {
					return nil, aiebuerr.Internal("unknown operation %q", it.Name)
				}
				size, err := serializer(pos, it.Args)
				if err != nil {
					return nil, err
				}
				it.size = size
				pos += size
			}
		}

		if activeLabel != "" && it.Name != ".align" && it.Name != ".eop" {
			lbl := labels[activeLabel]
			lbl.Count++
			lbl.Size += it.size
		}
	}

	res := &Result{
		Labels:          labels,
		Jobs:            make(map[JobID]*Job),
		LocalBarrierMap: make(map[uint32][]JobID),
		JobLaunchMap:    make(map[JobID][]JobID),
		ItemSections:    sections,
	}

	const noJob JobID = -1
	cjobID := noJob
	var eopNum uint32

	resolve := func(arg string) (uint32, error) {
		v, err := ParseNumArg(arg, labels)
		if err != nil {
			if unresolved, ok := aiebuerr.IsSymbolUnresolved(err); ok {
				return 0, aiebuerr.InvalidAsm("label %q is never declared", unresolved.Name)
			}
			return 0, err
		}
		return v, nil
	}

	for idx := range items {
		it := &items[idx]
		if it.Kind == ItemLabel {
			continue
		}

		switch it.Name {
		case "start_job", "start_job_deferred":
			if len(it.Args) < 1 {
				return nil, aiebuerr.InvalidAsm("%s requires a job-id argument", it.Name)
			}
			id, err := resolve(it.Args[0])
			if err != nil {
				return nil, err
			}
			jobID := JobID(id)
			job := &Job{ID: jobID, StartPos: itemPos[idx], StartIndex: idx, EOPNum: eopNum, Deferred: it.Name == "start_job_deferred"}
			res.Jobs[jobID] = job
			res.JobOrder = append(res.JobOrder, jobID)
			cjobID = jobID

		case "eof":
			job := &Job{ID: EOFID, StartPos: itemPos[idx], StartIndex: idx, EOPNum: eopNum}
			job.EndPos = itemPos[idx] + it.size
			job.EndIndex = idx
			job.closed = true
			res.Jobs[EOFID] = job
			res.JobOrder = append(res.JobOrder, EOFID)
			cjobID = noJob

		case ".eop":
			id := EOPIDBase - JobID(eopNum)
			res.Jobs[id] = &Job{ID: id, StartPos: itemPos[idx], StartIndex: idx, EOPNum: eopNum}
			res.JobOrder = append(res.JobOrder, id)
			eopNum++

		case "local_barrier":
			if cjobID == noJob {
				return nil, aiebuerr.Internal("local_barrier outside of any open job")
			}
			if len(it.Args) < 1 {
				return nil, aiebuerr.InvalidAsm("local_barrier requires a barrier-id argument")
			}
			bid, err := resolve(it.Args[0])
			if err != nil {
				return nil, err
			}
			res.Jobs[cjobID].BarrierIDs = append(res.Jobs[cjobID].BarrierIDs, bid)
			res.LocalBarrierMap[bid] = append(res.LocalBarrierMap[bid], cjobID)

		case "launch_job":
			if cjobID == noJob {
				return nil, aiebuerr.Internal("launch_job outside of any open job")
			}
			if len(it.Args) < 1 {
				return nil, aiebuerr.InvalidAsm("launch_job requires a target job-id argument")
			}
			target, err := resolve(it.Args[0])
			if err != nil {
				return nil, err
			}
			targetID := JobID(target)
			res.Jobs[cjobID].DependentJobs = append(res.Jobs[cjobID].DependentJobs, targetID)
			res.JobLaunchMap[targetID] = append(res.JobLaunchMap[targetID], cjobID)

		case "end_job":
			if cjobID == noJob {
				return nil, aiebuerr.Internal("end_job without a matching start_job")
			}
			job := res.Jobs[cjobID]
			job.EndPos = itemPos[idx] + it.size
			job.EndIndex = idx
			job.closed = true
			cjobID = noJob
		}
	}

	eofJob, hasEOF := res.Jobs[EOFID]
	for id, job := range res.Jobs {
		if id == EOFID || job.closed {
			continue
		}
		if !hasEOF {
			return nil, aiebuerr.InvalidAsm("job %d has no matching end_job", id)
		}
		job.EndPos = eofJob.StartPos
		job.EndIndex = eofJob.StartIndex
		job.closed = true
	}

	for launched := range res.JobLaunchMap {
		if _, ok := res.Jobs[launched]; !ok {
			return nil, aiebuerr.InvalidAsm("launch_job references undeclared job %d", launched)
		}
	}

	return res, nil
}
